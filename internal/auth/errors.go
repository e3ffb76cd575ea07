package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("auth: invalid username or password")
	ErrNotAuthenticated   = errors.New("auth: not authenticated")
	ErrForbidden          = errors.New("auth: forbidden")
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrUsernameTaken      = errors.New("auth: username already taken")
	ErrEmailTaken         = errors.New("auth: email already registered")
	ErrPasswordMismatch   = errors.New("auth: passwords do not match")
	ErrPasswordTooShort   = errors.New("auth: password is too short")
	ErrWrongPassword      = errors.New("auth: current password is incorrect")
	ErrInvalidUsername    = errors.New("auth: invalid username")
	ErrInvalidEmail       = errors.New("auth: invalid email")
	ErrInvalidName        = errors.New("auth: name is required")
	ErrInvalidRole        = errors.New("auth: invalid role")
	ErrDuplicateUser      = errors.New("auth: duplicate user id")
)
