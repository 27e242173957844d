package supabaseimpl

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/orgball2608/tint-feed/pkg/errors"
	storage_go "github.com/supabase-community/storage-go"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"postgrest no rows", stderrors.New("(PGRST116) JSON object requested, multiple (or no) rows returned"), errors.ErrNotFound},
		{"postgrest unique violation", stderrors.New("(23505) duplicate key value violates unique constraint"), errors.ErrConflict},
		{"postgrest rls", stderrors.New("(42501) new row violates row-level security policy"), errors.ErrUnauthorized},
		{"postgrest jwt", stderrors.New("(PGRST301) JWT expired"), errors.ErrUnauthorized},
		{"postgrest bad column", stderrors.New("(PGRST100) failed to parse filter"), errors.ErrBadRequest},
		{"postgrest server", stderrors.New("(XX000) internal error"), errors.ErrServiceUnavailable},
		{"gotrue bad credentials", stderrors.New(`response status code 400: {"error":"invalid_grant","error_description":"Invalid login credentials"}`), errors.ErrUnauthorized},
		{"gotrue rate limited", stderrors.New("response status code 429"), errors.ErrRateLimited},
		{"gotrue user exists", stderrors.New(`response status code 422: {"msg":"User already registered"}`), errors.ErrConflict},
		{"gotrue outage", stderrors.New("response status code 503"), errors.ErrServiceUnavailable},
		{"storage missing object", &storage_go.StorageError{Status: 404, Message: "Object not found"}, errors.ErrNotFound},
		{"transport timeout", context.DeadlineExceeded, errors.ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError(tt.err, "op")
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestMapError_Passthrough(t *testing.T) {
	assert.NoError(t, mapError(nil, "op"))

	err := mapError(stderrors.New("error parsing error response: EOF"), "list posts")
	assert.EqualError(t, err, "list posts: error parsing error response: EOF")
	assert.True(t, errors.Retryable(err))
}

func TestMapError_UserMessages(t *testing.T) {
	err := mapError(stderrors.New(`response status code 400: {"error":"invalid_grant"}`), "create session")
	assert.Equal(t, "Incorrect email or password. Please try again.", errors.UserMessage(err))

	err = mapError(context.DeadlineExceeded, "list posts")
	assert.Equal(t, "No internet connection. Please check your network and try again.", errors.UserMessage(err))
}
