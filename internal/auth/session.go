package auth

import (
	"context"

	"github.com/dmitrymomot/academy/internal/state"
)

// CurrentUserKey is the visitor storage key of the signed-in user.
const CurrentUserKey = "user"

// Session is one visitor's sign-in state.
type Session struct {
	store *state.Store[*User]
	dir   *Directory
}

// NewSession wraps a visitor's current-user store.
func NewSession(store *state.Store[*User], dir *Directory) *Session {
	return &Session{store: store, dir: dir}
}

// Store exposes the underlying store for hydration.
func (s *Session) Store() *state.Store[*User] { return s.store }

// Current returns the signed-in user.
func (s *Session) Current(ctx context.Context) (User, bool) {
	u := s.store.Get(ctx)
	if u == nil {
		return User{}, false
	}
	return *u, true
}

// Require returns the signed-in user or ErrNotAuthenticated.
func (s *Session) Require(ctx context.Context) (User, error) {
	u, ok := s.Current(ctx)
	if !ok {
		return User{}, ErrNotAuthenticated
	}
	return u, nil
}

// Login authenticates and stores the user.
func (s *Session) Login(ctx context.Context, login, password string) (User, error) {
	u, err := s.dir.Authenticate(ctx, login, password)
	if err != nil {
		return User{}, err
	}
	return u, s.store.Set(ctx, &u)
}

// Register creates an account and signs it in.
func (s *Session) Register(ctx context.Context, in RegisterInput) (User, error) {
	u, err := s.dir.Register(ctx, in)
	if err != nil {
		return User{}, err
	}
	return u, s.store.Set(ctx, &u)
}

// Logout clears the current user.
func (s *Session) Logout(ctx context.Context) error {
	return s.store.Set(ctx, nil)
}

// UpdateProfile edits the signed-in user's details.
func (s *Session) UpdateProfile(ctx context.Context, in ProfileInput) (User, error) {
	cur, err := s.Require(ctx)
	if err != nil {
		return User{}, err
	}
	u, err := s.dir.UpdateProfile(ctx, cur.ID, in)
	if err != nil {
		return User{}, err
	}
	return u, s.store.Set(ctx, &u)
}

// ChangePassword changes the signed-in user's password.
func (s *Session) ChangePassword(ctx context.Context, in PasswordInput) error {
	cur, err := s.Require(ctx)
	if err != nil {
		return err
	}
	return s.dir.ChangePassword(ctx, cur.ID, in)
}

// Refresh reloads the stored user from the directory so role or profile
// changes made elsewhere apply. A deleted account signs the visitor out.
func (s *Session) Refresh(ctx context.Context) {
	cur, ok := s.Current(ctx)
	if !ok {
		return
	}
	fresh, err := s.dir.Get(ctx, cur.ID)
	if err != nil {
		_ = s.store.Set(ctx, nil)
		return
	}
	if fresh.Username != cur.Username || fresh.Name != cur.Name || fresh.Email != cur.Email ||
		fresh.Phone != cur.Phone || fresh.Role != cur.Role {
		_ = s.store.Set(ctx, &fresh)
	}
}
