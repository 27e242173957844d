package errors

import (
	"context"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"network", Wrap(ErrNetwork, "list posts"), true},
		{"unavailable", ErrServiceUnavailable, true},
		{"not found", WrapWithCode(ErrNotFound, "row_not_found", "posts/1"), false},
		{"invalid input", ErrInvalidInput, false},
		{"conflict", fmt.Errorf("create: %w", ErrConflict), false},
		{"cancelled", context.Canceled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}

func TestIsNetwork(t *testing.T) {
	assert.True(t, IsNetwork(&net.DNSError{Err: "no such host", Name: "db.example"}))
	assert.True(t, IsNetwork(context.DeadlineExceeded))
	assert.True(t, IsNetwork(Wrap(ErrNetwork, "x")))
	assert.False(t, IsNetwork(ErrUnauthorized))
	assert.False(t, IsNetwork(nil))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{Wrap(ErrNetwork, "fetch posts"), "No internet connection. Please check your network and try again."},
		{WrapWithCode(ErrUnauthorized, "invalid_credentials", "Invalid login credentials"), "Incorrect email or password. Please try again."},
		{WrapWithCode(ErrNotFound, "user", "User not found"), "We couldn't find an account with this email."},
		{WrapWithCode(ErrUnauthorized, "no_session", "Session not found"), "Session expired. Please log in again."},
		{WrapWithCode(ErrRateLimited, "client_rate_limit", "slow down"), "Too many attempts. Please wait a moment."},
		{WrapWithCode(ErrInvalidInput, "invalid_post", "Please add a caption or media"), "Please add a caption or media"},
		{WrapWithCode(ErrNotFound, "row_not_found", "posts/p1"), "This item no longer exists."},
		{New("boom"), "Something went wrong. Please try again."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UserMessage(tt.err))
	}
}

func TestGetCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", WrapWithCode(ErrConflict, "row_exists", "posts/1"))
	assert.Equal(t, "row_exists", GetCode(err))
	assert.Equal(t, "posts/1", GetMessage(err))
	assert.Empty(t, GetCode(ErrConflict))
}
