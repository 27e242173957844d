package authimpl

import (
	"context"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/orgball2608/tint-feed/internal/auth"
	"github.com/orgball2608/tint-feed/internal/backend"
	"github.com/orgball2608/tint-feed/internal/domain"
	"github.com/orgball2608/tint-feed/internal/repositories/kv"
	"github.com/orgball2608/tint-feed/pkg/config"
	"github.com/orgball2608/tint-feed/pkg/errors"
	"github.com/orgball2608/tint-feed/pkg/logger"
	"go.uber.org/fx"
)

var _ auth.Client = (*AuthImpl)(nil)

type Opts struct {
	fx.In

	Auth   backend.Auth
	Rows   backend.Rows
	Store  kv.Repository
	Config *config.Config
	Logger logger.Logger
}

type AuthImpl struct {
	auth     backend.Auth
	rows     backend.Rows
	store    kv.Repository
	validate *validator.Validate
	log      logger.Logger
	users    string

	mu   sync.RWMutex
	user *domain.User
}

func New(opts Opts) *AuthImpl {
	return &AuthImpl{
		auth:     opts.Auth,
		rows:     opts.Rows,
		store:    opts.Store,
		validate: validator.New(),
		log:      opts.Logger.WithComponent("Auth"),
		users:    opts.Config.Collections.Users,
	}
}

func (a *AuthImpl) Current() *domain.User {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.user == nil {
		return nil
	}
	u := a.user.Clone()
	return &u
}

func (a *AuthImpl) setUser(u *domain.User) {
	a.mu.Lock()
	a.user = u
	a.mu.Unlock()
}

func (a *AuthImpl) Register(ctx context.Context, in auth.RegisterInput) (*domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := a.validate.Struct(in); err != nil {
		return nil, errors.WrapWithCode(errors.ErrInvalidInput, "invalid_registration", registerMessage(err))
	}

	acc, err := a.auth.CreateAccount(ctx, in.Email, in.Password, in.Name)
	if err != nil {
		return nil, err
	}

	_, err = a.rows.CreateRow(ctx, a.users, acc.ID, backend.Fields{
		"name":        in.Name,
		"email":       in.Email,
		"on_boarding": false,
		"following":   []string{},
		"followers":   []string{},
	})
	if err != nil {
		return nil, errors.Wrap(err, "create user profile")
	}

	a.log.Info("Account registered", "user_id", acc.ID)

	return a.Login(ctx, in.Email, in.Password)
}

func (a *AuthImpl) Login(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errors.WrapWithCode(errors.ErrInvalidInput, "missing_credentials", "Please enter your email and password")
	}

	session, err := a.auth.CreateSession(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user, err := a.loadProfile(ctx)
	if err != nil {
		return nil, err
	}

	if err := a.persist(ctx, user, session); err != nil {
		a.log.Warn("Failed to persist session", "error", err)
	}
	a.setUser(user)

	a.log.Info("Logged in", "user_id", user.ID)
	return user, nil
}

func (a *AuthImpl) Logout(ctx context.Context) error {
	if err := a.auth.DeleteSession(ctx); err != nil {
		return err
	}

	a.clear(ctx)
	a.log.Info("Logged out")
	return nil
}

func (a *AuthImpl) Restore(ctx context.Context) (*domain.User, error) {
	var stored domain.StoredAuth
	found, err := a.store.Get(ctx, auth.StorageKey, &stored)
	if err != nil {
		return nil, errors.Wrap(err, "load stored session")
	}
	if found && stored.User != nil {
		a.setUser(stored.User)
	}

	session := stored.Session()
	if found && (stored.AccessToken != "" || stored.RefreshToken != "") {
		resumed, err := a.auth.ResumeSession(ctx, session)
		if err == nil {
			session = resumed
		} else if !errors.IsNetwork(err) {
			a.log.Info("Stored session rejected, clearing auth", "reason", err)
			a.clear(ctx)
			return nil, nil
		}
	}

	user, err := a.loadProfile(ctx)
	if err != nil {
		if errors.IsNetwork(err) && found && stored.User != nil {
			a.log.Warn("Backend unreachable, keeping local session", "user_id", stored.User.ID, "error", err)
			return a.Current(), nil
		}
		if errors.IsNetwork(err) {
			return nil, err
		}

		a.log.Info("Session expired, clearing auth", "reason", err)
		a.clear(ctx)
		return nil, nil
	}

	if err := a.persist(ctx, user, session); err != nil {
		a.log.Warn("Failed to persist session", "error", err)
	}
	a.setUser(user)

	return user, nil
}

func (a *AuthImpl) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := a.validate.Var(email, "required,email"); err != nil {
		return errors.WrapWithCode(errors.ErrInvalidInput, "invalid_email", "Please enter a valid email")
	}
	return a.auth.SendRecovery(ctx, email)
}

// loadProfile resolves the session account and reads its users row.
func (a *AuthImpl) loadProfile(ctx context.Context) (*domain.User, error) {
	su, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if su == nil {
		return nil, errors.WrapWithCode(errors.ErrUnauthorized, "no_session", "Session not found")
	}

	row, err := a.rows.GetRow(ctx, a.users, su.ID)
	if err != nil {
		return nil, errors.Wrap(err, "load user profile")
	}

	var u domain.User
	if err := row.Decode(&u); err != nil {
		return nil, errors.WrapWithCode(errors.ErrBadRequest, "decode_user", err.Error())
	}
	u.Following = u.Following.Normalize()
	u.Followers = u.Followers.Normalize()
	if u.Email == "" {
		u.Email = su.Email
	}

	return &u, nil
}

// persist saves the profile with the session tokens so Restore can resume it after a restart.
func (a *AuthImpl) persist(ctx context.Context, u *domain.User, session domain.Session) error {
	stored := domain.StoredAuth{
		User:         u,
		SessionID:    session.ID,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    session.ExpiresAt,
	}
	if err := a.store.Set(ctx, auth.StorageKey, stored); err != nil {
		return err
	}
	if err := a.store.Set(ctx, auth.UserKey, u); err != nil {
		return err
	}
	return a.store.Set(ctx, auth.LoggedInKey, true)
}

func (a *AuthImpl) clear(ctx context.Context) {
	a.setUser(nil)
	if err := a.store.Delete(ctx, auth.StorageKey, auth.UserKey, auth.LoggedInKey); err != nil {
		a.log.Warn("Failed to clear stored session", "error", err)
	}
}

func registerMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	switch fe := verrs[0]; fe.Field() {
	case "Email":
		return "Please enter a valid email"
	case "Password":
		if fe.Tag() == "min" {
			return "Password must be at least 8 characters"
		}
		return "Please enter a password"
	default:
		return "Please enter your name"
	}
}
