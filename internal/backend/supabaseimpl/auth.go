package supabaseimpl

import (
	"context"
	"time"

	"github.com/orgball2608/tint-feed/internal/domain"
	"github.com/orgball2608/tint-feed/pkg/errors"
	"github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/supabase-go"
)

const metadataName = "name"

func (c *Client) CurrentUser(ctx context.Context) (*domain.SessionUser, error) {
	var resp *types.UserResponse

	err := c.withClient(ctx, func(sb *supabase.Client) error {
		var err error
		resp, err = sb.Auth.GetUser()
		return err
	})
	if err != nil {
		mapped := mapError(err, "get current user")
		// Without a session the auth API answers 401; that is "signed out", not a failure.
		if errors.IsUnauthorized(mapped) {
			return nil, nil
		}
		return nil, mapped
	}
	if resp == nil {
		return nil, nil
	}

	user := sessionUser(resp.User)
	return &user, nil
}

func (c *Client) CreateSession(ctx context.Context, email, password string) (domain.Session, error) {
	var session types.Session

	err := c.withSessionSwap(ctx, func(sb *supabase.Client) error {
		var err error
		session, err = sb.SignInWithEmailPassword(email, password)
		return err
	})
	if err != nil {
		c.log.Warn("Sign in failed", "email", email, "error", err)
		return domain.Session{}, mapError(err, "create session")
	}

	c.log.Info("Session created", "user_id", session.User.ID.String())

	return toSession(session), nil
}

// DeleteSession signs out and drops the user token so later calls run with the anon key.
func (c *Client) DeleteSession(ctx context.Context) error {
	return c.withSessionSwap(ctx, func(sb *supabase.Client) error {
		if err := sb.Auth.Logout(); err != nil {
			c.log.Warn("Remote logout failed", "error", err)
		}

		return c.resetLocked()
	})
}

// ResumeSession installs the saved tokens on the SDK client. An expired or
// rejected access token is exchanged for a new one with the refresh token.
func (c *Client) ResumeSession(ctx context.Context, session domain.Session) (domain.Session, error) {
	var resumed types.Session

	err := c.withSessionSwap(ctx, func(sb *supabase.Client) error {
		if session.AccessToken != "" && (session.ExpiresAt == 0 || time.Now().Unix() < session.ExpiresAt) {
			sb.UpdateAuthSession(types.Session{AccessToken: session.AccessToken, RefreshToken: session.RefreshToken})

			resp, err := sb.Auth.GetUser()
			if err == nil && resp != nil {
				resumed = types.Session{
					AccessToken:  session.AccessToken,
					RefreshToken: session.RefreshToken,
					ExpiresAt:    session.ExpiresAt,
					User:         resp.User,
				}
				return nil
			}
			if err != nil && !errors.IsUnauthorized(mapError(err, "get current user")) {
				return err
			}
		}

		if session.RefreshToken == "" {
			_ = c.resetLocked()
			return errors.WrapWithCode(errors.ErrUnauthorized, "session_expired", "Session expired")
		}

		var err error
		resumed, err = sb.RefreshToken(session.RefreshToken)
		if err != nil {
			_ = c.resetLocked()
		}
		return err
	})
	if err != nil {
		return domain.Session{}, mapError(err, "resume session")
	}

	c.log.Info("Session resumed", "user_id", resumed.User.ID.String())
	return toSession(resumed), nil
}

func (c *Client) CreateAccount(ctx context.Context, email, password, name string) (domain.SessionUser, error) {
	var resp *types.SignupResponse

	err := c.withClient(ctx, func(sb *supabase.Client) error {
		var err error
		resp, err = sb.Auth.Signup(types.SignupRequest{
			Email:    email,
			Password: password,
			Data:     map[string]interface{}{metadataName: name},
		})
		return err
	})
	if err != nil {
		return domain.SessionUser{}, mapError(err, "create account")
	}

	user := sessionUser(resp.User)
	if user.Name == "" {
		user.Name = name
	}
	return user, nil
}

func (c *Client) SendRecovery(ctx context.Context, email string) error {
	err := c.withClient(ctx, func(sb *supabase.Client) error {
		return sb.Auth.Recover(types.RecoverRequest{Email: email})
	})
	if err != nil {
		return mapError(err, "send recovery")
	}
	return nil
}

func toSession(s types.Session) domain.Session {
	return domain.Session{
		ID:           s.User.ID.String(),
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    s.ExpiresAt,
		User:         sessionUser(s.User),
	}
}

func sessionUser(u types.User) domain.SessionUser {
	name, _ := u.UserMetadata[metadataName].(string)
	return domain.SessionUser{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  name,
	}
}
