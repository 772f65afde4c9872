package auth

import (
	"errors"
	"testing"

	"github.com/good-yellow-bee/netwatch/internal/models"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantOK   bool
	}{
		{"valid", "RouterPass2024", true},
		{"valid with symbols", "MyP@ssw0rd123!", true},
		{"too short", "Ab1", false},
		{"exactly 11", "Abcdefgh123", false},
		{"no uppercase", "abcdefgh1234", false},
		{"no lowercase", "ABCDEFGH1234", false},
		{"no digit", "Abcdefghijkl", false},
		{"empty", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.password)
			if got := err == nil; got != tc.wantOK {
				t.Errorf("ValidatePassword(%q) error=%v, want valid=%v", tc.password, err, tc.wantOK)
			}
			if err != nil {
				var pErr *PasswordValidationError
				if !errors.As(err, &pErr) || len(pErr.Messages) == 0 {
					t.Errorf("expected PasswordValidationError with messages, got %v", err)
				}
			}
		})
	}
}

func TestDirectoryAuthenticate(t *testing.T) {
	hash, err := HashPassword("RouterPass2024")
	if err != nil {
		t.Fatal(err)
	}

	dir, err := NewDirectory([]models.User{
		{Username: "admin", PasswordHash: hash, Role: models.RoleAdmin},
		{Username: "viewer", PasswordHash: hash, Role: models.RoleUser},
	})
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}
	if dir.Len() != 2 {
		t.Errorf("Len = %d, want 2", dir.Len())
	}

	u, err := dir.Authenticate("admin", "RouterPass2024")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u.Role != models.RoleAdmin {
		t.Errorf("role = %s, want admin", u.Role)
	}

	if _, err := dir.Authenticate("admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := dir.Authenticate("ghost", "RouterPass2024"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user err = %v", err)
	}
}

func TestNewDirectoryErrors(t *testing.T) {
	hash, _ := HashPassword("RouterPass2024")

	tests := []struct {
		name  string
		users []models.User
	}{
		{"empty username", []models.User{{Username: " ", PasswordHash: hash, Role: models.RoleAdmin}}},
		{"duplicate", []models.User{
			{Username: "a", PasswordHash: hash, Role: models.RoleAdmin},
			{Username: "a", PasswordHash: hash, Role: models.RoleUser},
		}},
		{"bad role", []models.User{{Username: "a", PasswordHash: hash, Role: "operator"}}},
		{"plaintext password", []models.User{{Username: "a", PasswordHash: "hunter2", Role: models.RoleUser}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDirectory(tt.users); err == nil {
				t.Error("expected error")
			}
		})
	}
}
