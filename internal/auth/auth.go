package auth

import (
	"context"

	"github.com/orgball2608/tint-feed/internal/domain"
)

// Keys of the persisted local state.
const (
	StorageKey  = "tint-auth"
	UserKey     = "tint_user"
	LoggedInKey = "tint_isLoggedIn"
)

type RegisterInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Name     string `validate:"required,max=100"`
}

type Client interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Logout(ctx context.Context) error

	// Restore brings back the persisted session on startup. It returns nil when signed out.
	Restore(ctx context.Context) (*domain.User, error)

	// Current returns the signed-in user profile, or nil.
	Current() *domain.User

	SendPasswordReset(ctx context.Context, email string) error
}
