package state

import "errors"

var (
	ErrDecode         = errors.New("state: failed to decode stored value")
	ErrUnknownVersion = errors.New("state: stored version is newer than supported")
	ErrMigrate        = errors.New("state: migration failed")
)
