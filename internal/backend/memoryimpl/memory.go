package memoryimpl

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/orgball2608/tint-feed/internal/backend"
	"github.com/orgball2608/tint-feed/internal/domain"
	"github.com/orgball2608/tint-feed/pkg/errors"
)

// FaultFunc lets tests fail an operation before it touches the store.
// op is one of list, get, create, update, delete, upload, delete_file.
type FaultFunc func(op, target string) error

type record struct {
	seq uint64
	row backend.Row
}

type account struct {
	user     domain.SessionUser
	password string
}

// Store is a goroutine-safe backend kept entirely in memory.
type Store struct {
	mu       sync.Mutex
	seq      uint64
	rows     map[string]map[string]*record
	files    map[string]map[string][]byte
	accounts map[string]*account
	session  *domain.Session
	refresh  map[string]domain.SessionUser
	fault    FaultFunc
	now      func() time.Time
}

var (
	_ backend.Rows  = (*Store)(nil)
	_ backend.Files = (*Store)(nil)
	_ backend.Auth  = (*Store)(nil)
)

func New() *Store {
	return &Store{
		rows:     make(map[string]map[string]*record),
		files:    make(map[string]map[string][]byte),
		accounts: make(map[string]*account),
		refresh:  make(map[string]domain.SessionUser),
		now:      time.Now,
	}
}

func (s *Store) InjectFault(fn FaultFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = fn
}

func (s *Store) checkFault(op, target string) error {
	if s.fault == nil {
		return nil
	}
	return s.fault(op, target)
}

func (s *Store) ListRows(ctx context.Context, collection string, filters ...backend.Filter) ([]backend.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkFault("list", collection); err != nil {
		return nil, err
	}

	records := make([]*record, 0, len(s.rows[collection]))
	for _, rec := range s.rows[collection] {
		if matches(rec.row, filters) {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].seq > records[j].seq })

	out := make([]backend.Row, 0, len(records))
	for _, rec := range records {
		row, err := cloneRow(rec.row)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *Store) GetRow(ctx context.Context, collection, id string) (backend.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkFault("get", collection); err != nil {
		return nil, err
	}

	rec, ok := s.rows[collection][id]
	if !ok {
		return nil, errors.WrapWithCode(errors.ErrNotFound, "row_not_found", fmt.Sprintf("%s/%s", collection, id))
	}
	return cloneRow(rec.row)
}

func (s *Store) CreateRow(ctx context.Context, collection, id string, fields backend.Fields) (backend.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" {
		id = backend.NewID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkFault("create", collection); err != nil {
		return nil, err
	}

	if _, ok := s.rows[collection][id]; ok {
		return nil, errors.WrapWithCode(errors.ErrConflict, "row_exists", fmt.Sprintf("%s/%s", collection, id))
	}

	row, err := cloneRow(backend.Row(fields))
	if err != nil {
		return nil, errors.Wrap(errors.ErrBadRequest, err.Error())
	}
	row["id"] = id
	if _, ok := row["created_at"]; !ok {
		row["created_at"] = s.now().UTC().Format(time.RFC3339Nano)
	}

	if s.rows[collection] == nil {
		s.rows[collection] = make(map[string]*record)
	}
	s.seq++
	s.rows[collection][id] = &record{seq: s.seq, row: row}

	return cloneRow(row)
}

func (s *Store) UpdateRow(ctx context.Context, collection, id string, fields backend.Fields) (backend.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkFault("update", collection); err != nil {
		return nil, err
	}

	rec, ok := s.rows[collection][id]
	if !ok {
		return nil, errors.WrapWithCode(errors.ErrNotFound, "row_not_found", fmt.Sprintf("%s/%s", collection, id))
	}

	patch, err := cloneRow(backend.Row(fields))
	if err != nil {
		return nil, errors.Wrap(errors.ErrBadRequest, err.Error())
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		rec.row[k] = v
	}

	return cloneRow(rec.row)
}

func (s *Store) DeleteRow(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkFault("delete", collection); err != nil {
		return err
	}

	if _, ok := s.rows[collection][id]; !ok {
		return errors.WrapWithCode(errors.ErrNotFound, "row_not_found", fmt.Sprintf("%s/%s", collection, id))
	}
	delete(s.rows[collection], id)
	return nil
}

func (s *Store) UploadFile(ctx context.Context, bucket string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkFault("upload", bucket); err != nil {
		return "", err
	}

	if s.files[bucket] == nil {
		s.files[bucket] = make(map[string][]byte)
	}
	id := backend.NewID()
	s.files[bucket][id] = append([]byte(nil), data...)
	return id, nil
}

func (s *Store) DeleteFile(ctx context.Context, bucket, fileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkFault("delete_file", bucket); err != nil {
		return err
	}

	if _, ok := s.files[bucket][fileID]; !ok {
		return errors.WrapWithCode(errors.ErrNotFound, "file_not_found", fmt.Sprintf("%s/%s", bucket, fileID))
	}
	delete(s.files[bucket], fileID)
	return nil
}

func (s *Store) GetFileURL(_ context.Context, bucket, fileID string) (string, error) {
	return fmt.Sprintf("memory://%s/%s", bucket, fileID), nil
}

// FileCount reports how many files bucket holds.
func (s *Store) FileCount(bucket string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files[bucket])
}

func (s *Store) CurrentUser(ctx context.Context) (*domain.SessionUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, nil
	}
	u := s.session.User
	return &u, nil
}

func (s *Store) CreateSession(ctx context.Context, email, password string) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[strings.ToLower(email)]
	if !ok || acc.password != password {
		return domain.Session{}, errors.WrapWithCode(errors.ErrUnauthorized, "invalid_credentials", "Invalid login credentials")
	}

	return s.issueLocked(acc.user), nil
}

func (s *Store) issueLocked(user domain.SessionUser) domain.Session {
	s.session = &domain.Session{
		ID:           backend.NewID(),
		AccessToken:  backend.NewID(),
		RefreshToken: backend.NewID(),
		ExpiresAt:    s.now().Add(time.Hour).Unix(),
		User:         user,
	}
	s.refresh[s.session.RefreshToken] = user
	return *s.session
}

func (s *Store) ResumeSession(ctx context.Context, session domain.Session) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil && session.AccessToken != "" && s.session.AccessToken == session.AccessToken {
		return *s.session, nil
	}

	user, ok := s.refresh[session.RefreshToken]
	if session.RefreshToken == "" || !ok {
		return domain.Session{}, errors.WrapWithCode(errors.ErrUnauthorized, "session_expired", "Session expired")
	}
	delete(s.refresh, session.RefreshToken)

	return s.issueLocked(user), nil
}

// ExpireAccessToken drops the active access token but keeps refresh tokens valid.
func (s *Store) ExpireAccessToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
}

func (s *Store) DeleteSession(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		delete(s.refresh, s.session.RefreshToken)
	}
	s.session = nil
	return nil
}

func (s *Store) CreateAccount(ctx context.Context, email, password, name string) (domain.SessionUser, error) {
	if err := ctx.Err(); err != nil {
		return domain.SessionUser{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	if _, ok := s.accounts[key]; ok {
		return domain.SessionUser{}, errors.WrapWithCode(errors.ErrConflict, "user_exists", "User already registered")
	}

	user := domain.SessionUser{ID: backend.NewID(), Email: email, Name: name}
	s.accounts[key] = &account{user: user, password: password}
	return user, nil
}

func (s *Store) SendRecovery(ctx context.Context, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[strings.ToLower(email)]; !ok {
		return errors.WrapWithCode(errors.ErrNotFound, "user_not_found", "User not found")
	}
	return nil
}

func matches(row backend.Row, filters []backend.Filter) bool {
	for _, f := range filters {
		got := fmt.Sprint(row[f.Column])
		if row[f.Column] == nil {
			got = ""
		}
		switch f.Op {
		case backend.OpEq:
			if got != f.Value {
				return false
			}
		case backend.OpNeq:
			if got == f.Value {
				return false
			}
		case backend.OpGt:
			if got <= f.Value {
				return false
			}
		case backend.OpLt:
			if got >= f.Value {
				return false
			}
		}
	}
	return true
}

// cloneRow deep-copies a row the way a network round trip would.
func cloneRow(r backend.Row) (backend.Row, error) {
	if r == nil {
		return backend.Row{}, nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	out := backend.Row{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
