package backend

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/orgball2608/tint-feed/internal/domain"
)

// Row is one document of a backend collection as returned by the BaaS.
type Row map[string]any

// Fields holds the columns written by CreateRow and UpdateRow.
type Fields map[string]any

// Decode copies the row into dst through its JSON tags.
func (r Row) Decode(dst any) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

// ID returns the "id" column, or "" when absent.
func (r Row) ID() string {
	id, _ := r["id"].(string)
	return id
}

// ToRow converts a tagged struct into a Row.
func ToRow(v any) (Row, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var row Row
	if err := json.Unmarshal(b, &row); err != nil {
		return nil, err
	}
	return row, nil
}

type Op string

const (
	OpEq  Op = "eq"
	OpNeq Op = "neq"
	OpGt  Op = "gt"
	OpLt  Op = "lt"
)

type Filter struct {
	Column string
	Op     Op
	Value  string
}

func Eq(column, value string) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

//go:generate go run go.uber.org/mock/mockgen -source=backend.go -destination=mocks/mock.go
type Rows interface {
	// ListRows returns the rows of a collection matching every filter, newest first.
	ListRows(ctx context.Context, collection string, filters ...Filter) ([]Row, error)

	GetRow(ctx context.Context, collection, id string) (Row, error)

	CreateRow(ctx context.Context, collection, id string, fields Fields) (Row, error)

	// UpdateRow patches the given fields and returns the stored row.
	UpdateRow(ctx context.Context, collection, id string, fields Fields) (Row, error)

	DeleteRow(ctx context.Context, collection, id string) error
}

type Files interface {
	// UploadFile stores data in bucket and returns the generated file id.
	UploadFile(ctx context.Context, bucket string, data []byte, contentType string) (string, error)

	DeleteFile(ctx context.Context, bucket, fileID string) error

	GetFileURL(ctx context.Context, bucket, fileID string) (string, error)
}

type Auth interface {
	// CurrentUser returns the account of the active session, or nil when signed out.
	CurrentUser(ctx context.Context) (*domain.SessionUser, error)

	CreateSession(ctx context.Context, email, password string) (domain.Session, error)

	// ResumeSession reactivates a session saved by an earlier process, refreshing
	// it when the access token has expired. Unauthorized means it cannot be resumed.
	ResumeSession(ctx context.Context, session domain.Session) (domain.Session, error)

	DeleteSession(ctx context.Context) error

	CreateAccount(ctx context.Context, email, password, name string) (domain.SessionUser, error)

	SendRecovery(ctx context.Context, email string) error
}
