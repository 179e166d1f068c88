package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFieldsMissing is returned when a required registration field is empty.
	ErrFieldsMissing = fmt.Errorf("%w: username and email are required", ErrValidation)
	// ErrUserAlreadyExists is returned when trying to register a user with an existing username.
	ErrUserAlreadyExists = fmt.Errorf("%w: username already taken", ErrValidation)
	// ErrEmailAlreadyExists is returned when trying to register a user with an existing email.
	ErrEmailAlreadyExists = fmt.Errorf("%w: email already registered", ErrValidation)
	// ErrPasswordMismatch is returned when password and confirmation differ.
	ErrPasswordMismatch = fmt.Errorf("%w: passwords do not match", ErrValidation)
	// ErrPasswordTooShort is returned when the chosen password is below the minimum length.
	ErrPasswordTooShort = fmt.Errorf("%w: password too short", ErrValidation)
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the username/password combination is incorrect.
	// Deliberately generic: it covers both unknown-user and wrong-password.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// User represents a registered account in the system.
type User struct {
	ID           int64  // Unique identifier
	Username     string // Login username, globally unique
	Email        string // Contact email, globally unique
	PasswordHash []byte // One-way derived password credential, never plaintext
	CreatedAt    int64  // Unix timestamp of account creation
}

// Identifiable exposes a stable identifier suitable for binding a session to.
type Identifiable interface {
	Identity() int64
}

// Identity implements Identifiable.
func (u User) Identity() int64 {
	return u.ID
}
