// Package auth manages the user directory and the signed-in user of a visitor.
//
// The [Directory] is site-wide: every user account with a bcrypt password
// hash, stored under the "users" key. A [Session] belongs to one visitor and
// keeps the public view of the current user under the "user" key, publishing
// authChanged whenever it changes.
//
// Roles decide where a user lands after signing in; see [Role.HomePath].
package auth
