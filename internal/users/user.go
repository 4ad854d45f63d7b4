// Package users provides accounts and the credential check behind login.
// Passwords are stored as bcrypt hashes and never serialized.
package users

import (
	"context"
	"time"

	"github.com/JaimeStill/gallery/internal/catalog"
	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	Guest  Role = "guest"
	Member Role = "user"
	Admin  Role = "admin"
)

type User struct {
	ID        catalog.ID `json:"id"`
	Username  string     `json:"username"`
	Role      Role       `json:"role"`
	Avatar    string     `json:"avatar,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Credentials is the body of both login and registration.
type Credentials struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=4,max=72"`
}

// Store is the persistence contract for accounts.
type Store interface {
	Find(ctx context.Context, id catalog.ID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	// Create returns ErrDuplicate when the username is taken.
	Create(ctx context.Context, username, password string, role Role) (*User, error)
	// Verify requires an exact username match and a matching password.
	// Any mismatch is ErrInvalidCredentials.
	Verify(ctx context.Context, username, password string) (*User, error)
}

type System interface {
	Store
	Handler() *Handler
	// EnsureAdmin creates the admin account when username is free. An
	// existing account is left untouched.
	EnsureAdmin(ctx context.Context, username, password string) (bool, error)
}

// HashPassword returns the bcrypt hash stored for password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password produced hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
