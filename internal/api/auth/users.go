package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/good-yellow-bee/netwatch/internal/models"
)

// ErrInvalidCredentials is returned for an unknown user or wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash is compared against when the user does not exist so that
// unknown and known usernames take the same time to reject.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("netwatch-dummy-password"), bcrypt.DefaultCost)

// Directory holds the configured dashboard accounts.
type Directory struct {
	users map[string]models.User
}

// NewDirectory validates users and indexes them by username.
func NewDirectory(users []models.User) (*Directory, error) {
	d := &Directory{users: make(map[string]models.User, len(users))}
	for i, u := range users {
		u.Username = strings.TrimSpace(u.Username)
		if u.Username == "" {
			return nil, fmt.Errorf("user %d: username is required", i)
		}
		if _, dup := d.users[u.Username]; dup {
			return nil, fmt.Errorf("user %d: duplicate username %q", i, u.Username)
		}
		if u.Role != models.RoleAdmin && u.Role != models.RoleUser {
			return nil, fmt.Errorf("user %q: role must be %q or %q", u.Username, models.RoleAdmin, models.RoleUser)
		}
		if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
			return nil, fmt.Errorf("user %q: password_hash is not a bcrypt hash: %w", u.Username, err)
		}
		d.users[u.Username] = u
	}
	return d, nil
}

// Authenticate checks a username and password.
func (d *Directory) Authenticate(username, password string) (*models.User, error) {
	u, ok := d.users[username]
	if !ok {
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// Len returns the number of configured users.
func (d *Directory) Len() int {
	return len(d.users)
}

// HashPassword returns a bcrypt hash suitable for the users config.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
