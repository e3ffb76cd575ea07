package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/academy/internal/state"
)

// UsersKey is the site storage key of the directory.
const UsersKey = "users"

// RegisterInput is a sign-up request.
type RegisterInput struct {
	Username        string `json:"username"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ProfileInput updates contact details.
type ProfileInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// PasswordInput changes a password.
type PasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Directory is the site-wide set of accounts.
type Directory struct {
	store *state.Store[Users]
	cost  int
	now   func() time.Time
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

// WithBcryptCost sets the hashing cost for new passwords.
func WithBcryptCost(cost int) DirectoryOption {
	return func(d *Directory) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			d.cost = cost
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) DirectoryOption {
	return func(d *Directory) { d.now = now }
}

// NewDirectory wraps a users store.
func NewDirectory(store *state.Store[Users], opts ...DirectoryOption) *Directory {
	d := &Directory{store: store, cost: bcrypt.DefaultCost, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Store exposes the underlying store for hydration.
func (d *Directory) Store() *state.Store[Users] { return d.store }

// Authenticate checks a username or email against its password hash.
func (d *Directory) Authenticate(ctx context.Context, login, password string) (User, error) {
	login = strings.TrimSpace(login)
	users := d.store.Get(ctx)
	i := users.index(func(u User) bool {
		return strings.EqualFold(u.Username, login) || (u.Email != "" && strings.EqualFold(u.Email, login))
	})
	if i < 0 {
		// Keep timing similar for unknown users.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(users[i].PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return users[i].Public(), nil
}

// Register creates a user with role user.
func (d *Directory) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	if err := validateUsername(in.Username); err != nil {
		return User{}, err
	}
	if in.Name == "" {
		return User{}, ErrInvalidName
	}
	if err := validateEmail(in.Email); err != nil {
		return User{}, err
	}
	if err := validatePassword(in.Password, in.ConfirmPassword); err != nil {
		return User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), d.cost)
	if err != nil {
		return User{}, err
	}

	var created User
	_, err = d.store.Update(ctx, func(users *Users) error {
		if users.index(func(u User) bool { return strings.EqualFold(u.Username, in.Username) }) >= 0 {
			return ErrUsernameTaken
		}
		if users.index(func(u User) bool { return strings.EqualFold(u.Email, in.Email) }) >= 0 {
			return ErrEmailTaken
		}
		created = User{
			ID:           users.nextID(),
			Username:     in.Username,
			Name:         in.Name,
			Email:        in.Email,
			Phone:        strings.TrimSpace(in.Phone),
			Role:         RoleUser,
			PasswordHash: string(hash),
			CreatedAt:    d.now().UTC(),
		}
		*users = append(*users, created)
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return created.Public(), nil
}

// Get returns one user.
func (d *Directory) Get(ctx context.Context, id int) (User, error) {
	users := d.store.Get(ctx)
	i := users.index(func(u User) bool { return u.ID == id })
	if i < 0 {
		return User{}, ErrUserNotFound
	}
	return users[i].Public(), nil
}

// List returns all users without credentials.
func (d *Directory) List(ctx context.Context) []User {
	users := d.store.Get(ctx)
	out := make([]User, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	return out
}

// WithRole returns users holding any of roles.
func (d *Directory) WithRole(ctx context.Context, roles ...Role) []User {
	var out []User
	for _, u := range d.List(ctx) {
		if u.Role.In(roles...) {
			out = append(out, u)
		}
	}
	return out
}

// UpdateProfile changes name, email and phone.
func (d *Directory) UpdateProfile(ctx context.Context, id int, in ProfileInput) (User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" {
		return User{}, ErrInvalidName
	}
	if err := validateEmail(in.Email); err != nil {
		return User{}, err
	}

	var updated User
	_, err := d.store.Update(ctx, func(users *Users) error {
		i := users.index(func(u User) bool { return u.ID == id })
		if i < 0 {
			return ErrUserNotFound
		}
		if users.index(func(u User) bool { return u.ID != id && strings.EqualFold(u.Email, in.Email) }) >= 0 {
			return ErrEmailTaken
		}
		(*users)[i].Name = in.Name
		(*users)[i].Email = in.Email
		(*users)[i].Phone = strings.TrimSpace(in.Phone)
		updated = (*users)[i]
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return updated.Public(), nil
}

// ChangePassword verifies the current password and stores a new hash.
func (d *Directory) ChangePassword(ctx context.Context, id int, in PasswordInput) error {
	if err := validatePassword(in.NewPassword, in.ConfirmPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), d.cost)
	if err != nil {
		return err
	}

	_, err = d.store.Update(ctx, func(users *Users) error {
		i := users.index(func(u User) bool { return u.ID == id })
		if i < 0 {
			return ErrUserNotFound
		}
		if bcrypt.CompareHashAndPassword([]byte((*users)[i].PasswordHash), []byte(in.CurrentPassword)) != nil {
			return ErrWrongPassword
		}
		(*users)[i].PasswordHash = string(hash)
		return nil
	})
	return err
}

var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("timing-equaliser"), bcrypt.MinCost)
	if err != nil {
		panic(errors.Join(errors.New("auth: dummy hash"), err))
	}
	return h
}()
