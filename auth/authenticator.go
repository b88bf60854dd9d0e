// Package auth holds the login capability used by the HTTP front end.
// Nothing in the notes API is gated on it.
package auth

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidCredentials is returned when credentials are rejected.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials submitted at login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Principal is the identity established by a successful login.
type Principal struct {
	Email string `json:"email"`
}

// Authenticator verifies credentials. Swap in a real identity provider by
// implementing this interface.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (Principal, error)
}

// AcceptAny accepts any non-empty email and password. Development only.
type AcceptAny struct{}

// Authenticate implements Authenticator.
func (AcceptAny) Authenticate(_ context.Context, creds Credentials) (Principal, error) {
	email := strings.TrimSpace(creds.Email)
	if email == "" || creds.Password == "" {
		return Principal{}, ErrInvalidCredentials
	}
	return Principal{Email: email}, nil
}
