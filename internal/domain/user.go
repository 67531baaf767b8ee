package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// MinPasswordLength is the shortest password the demo login accepts.
const MinPasswordLength = 6

// User is the demo shopper identity kept in the session.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewLoginUser builds the user for a login attempt. Any non-empty email with
// a long enough password is accepted; the display name is the part of the
// email before '@'.
func NewLoginUser(email, password string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" || len(password) < MinPasswordLength {
		return nil, ErrInvalidCredentials
	}
	name, _, _ := strings.Cut(email, "@")
	return &User{ID: uuid.NewString(), Name: name, Email: email}, nil
}

// NewSignupUser builds the user for a signup attempt.
func NewSignupUser(name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || len(password) < MinPasswordLength {
		return nil, ErrInvalidCredentials
	}
	return &User{ID: uuid.NewString(), Name: name, Email: email}, nil
}

// Validate reports whether a rehydrated user record is usable.
func (u *User) Validate() error {
	if u.ID == "" || u.Email == "" {
		return ErrNotAuthenticated
	}
	return nil
}
