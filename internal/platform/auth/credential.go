package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when a submitted credential does not
// match the authorized one.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Credential is a submitted login. It is never persisted.
type Credential struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Verifier decides whether a credential unlocks the full record.
type Verifier interface {
	Verify(ctx context.Context, cred Credential) error
}

// PasswordVerifier accepts a single authorized account: the email must
// match exactly (case-sensitive) and the password must match a bcrypt hash.
type PasswordVerifier struct {
	email string
	hash  []byte
}

// NewPasswordVerifier creates a verifier for email and a bcrypt hash. With an
// empty email or hash every attempt is rejected.
func NewPasswordVerifier(email, passwordHash string) *PasswordVerifier {
	return &PasswordVerifier{email: email, hash: []byte(passwordHash)}
}

// Configured reports whether an account is set up.
func (v *PasswordVerifier) Configured() bool {
	return v.email != "" && len(v.hash) > 0
}

func (v *PasswordVerifier) Verify(_ context.Context, cred Credential) error {
	if !v.Configured() {
		return ErrInvalidCredentials
	}
	emailOK := subtle.ConstantTimeCompare([]byte(cred.Email), []byte(v.email)) == 1
	// compare the password even on an email mismatch to keep timing flat
	pwErr := bcrypt.CompareHashAndPassword(v.hash, []byte(cred.Password))
	if !emailOK || pwErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword returns the bcrypt hash to configure as AUTH_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}
