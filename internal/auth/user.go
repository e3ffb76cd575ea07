package auth

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strings"
	"time"
)

// Role controls access to the back office.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleHR      Role = "hr"
	RoleTeacher Role = "teacher"
	RoleUser    Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleTeacher, RoleUser:
		return true
	}
	return false
}

// HomePath is where a user with this role is sent after login.
func (r Role) HomePath() string {
	switch r {
	case RoleAdmin:
		return "/admin"
	case RoleHR:
		return "/admin/teachers"
	case RoleTeacher:
		return "/teacher"
	default:
		return "/profile"
	}
}

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	return slices.Contains(roles, r)
}

// User is an account. PasswordHash never leaves the directory; use Public.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Public returns the user without credentials.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// Users is the persisted directory.
type Users []User

// Validate checks uniqueness of ids, usernames and emails.
func (us Users) Validate() error {
	ids := make(map[int]struct{}, len(us))
	names := make(map[string]struct{}, len(us))
	emails := make(map[string]struct{}, len(us))
	for _, u := range us {
		if _, dup := ids[u.ID]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateUser, u.ID)
		}
		ids[u.ID] = struct{}{}

		name := strings.ToLower(u.Username)
		if _, dup := names[name]; dup {
			return fmt.Errorf("%w: %s", ErrUsernameTaken, u.Username)
		}
		names[name] = struct{}{}

		if u.Email != "" {
			email := strings.ToLower(u.Email)
			if _, dup := emails[email]; dup {
				return fmt.Errorf("%w: %s", ErrEmailTaken, u.Email)
			}
			emails[email] = struct{}{}
		}
		if !u.Role.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidRole, u.Role)
		}
	}
	return nil
}

func (us Users) index(match func(User) bool) int {
	return slices.IndexFunc(us, match)
}

func (us Users) nextID() int {
	next := 1
	for _, u := range us {
		next = max(next, u.ID+1)
	}
	return next
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,32}$`)

const minPasswordLen = 6

func validateUsername(s string) error {
	if !usernamePattern.MatchString(s) {
		return ErrInvalidUsername
	}
	return nil
}

func validateEmail(s string) error {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return ErrInvalidEmail
	}
	return nil
}

func validatePassword(password, confirm string) error {
	if len(password) < minPasswordLen {
		return ErrPasswordTooShort
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}
