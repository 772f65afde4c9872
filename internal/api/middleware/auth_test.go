package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/good-yellow-bee/netwatch/internal/api/auth"
	"github.com/good-yellow-bee/netwatch/internal/models"
)

var testSecret = []byte("test-secret-key-32-bytes-long!!")

func TestJWTAuth_ValidToken(t *testing.T) {
	jwtService := auth.NewJWTService(testSecret, 15*time.Minute)

	user := &models.User{Username: "noc-admin", Role: models.RoleAdmin}
	token, err := jwtService.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	var gotUsername string
	var gotRole models.Role
	var gotClaims *auth.Claims
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUsername = GetUsername(r.Context())
		gotRole = GetRole(r.Context())
		gotClaims = GetClaims(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	wrapped := JWTAuth(jwtService, nil)(handler)

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotUsername != user.Username {
		t.Errorf("Username = %q, want %q", gotUsername, user.Username)
	}
	if gotRole != user.Role {
		t.Errorf("Role = %q, want %q", gotRole, user.Role)
	}
	if gotClaims == nil || gotClaims.Subject != user.Username {
		t.Errorf("Claims = %+v, want subject %q", gotClaims, user.Username)
	}
}

func TestJWTAuth_Rejects(t *testing.T) {
	jwtService := auth.NewJWTService(testSecret, 15*time.Minute)
	other := auth.NewJWTService([]byte("another-secret-key-32-bytes-long"), 15*time.Minute)

	user := &models.User{Username: "ops", Role: models.RoleUser}
	foreign, err := other.GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	expired, err := jwtService.GenerateTokenWithTTL(user, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateTokenWithTTL: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"no token", "Bearer"},
		{"garbage", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + foreign},
		{"expired", "Bearer " + expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not be called")
			})
			wrapped := JWTAuth(jwtService, nil)(handler)

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestGetRole_EmptyContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if got := GetRole(req.Context()); got != "" {
		t.Errorf("GetRole() = %q, want empty", got)
	}
	if got := GetClaims(req.Context()); got != nil {
		t.Errorf("GetClaims() = %+v, want nil", got)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	keys := []string{"probe-key-one", "probe-key-two"}

	tests := []struct {
		name   string
		key    string
		status int
	}{
		{"first key", "probe-key-one", http.StatusOK},
		{"second key", "probe-key-two", http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "probe-key-three", http.StatusUnauthorized},
		{"prefix", "probe-key", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID string
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotID = GetAPIKeyID(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest("POST", "/samples", nil)
			if tt.key != "" {
				req.Header.Set(APIKeyHeader, tt.key)
			}
			rec := httptest.NewRecorder()
			APIKeyAuth(keys, nil)(handler).ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status == http.StatusOK && len(gotID) != 8 {
				t.Errorf("key id = %q, want 8 hex chars", gotID)
			}
		})
	}
}

func TestAPIKeyAuth_NoKeysConfigured(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be called")
	})
	req := httptest.NewRequest("POST", "/samples", nil)
	req.Header.Set(APIKeyHeader, "anything")
	rec := httptest.NewRecorder()
	APIKeyAuth(nil, nil)(handler).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
