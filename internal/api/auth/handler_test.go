package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/good-yellow-bee/netwatch/internal/models"
)

func newTestHandler(t *testing.T) (*Handler, *JWTService) {
	t.Helper()
	hash, err := HashPassword("RouterPass2024")
	if err != nil {
		t.Fatal(err)
	}
	dir, err := NewDirectory([]models.User{{Username: "admin", PasswordHash: hash, Role: models.RoleAdmin}})
	if err != nil {
		t.Fatal(err)
	}
	jwtSvc := NewJWTService(testSecret, 15*time.Minute)
	return NewHandler(dir, jwtSvc, NewLockoutTracker(2, time.Hour), nil), jwtSvc
}

func postLogin(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	return rec
}

func TestLogin_Success(t *testing.T) {
	h, jwtSvc := newTestHandler(t)

	rec := postLogin(h, `{"username":"admin","password":"RouterPass2024"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data LoginResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.TokenType != "Bearer" || resp.Data.ExpiresIn != 900 {
		t.Errorf("response = %+v", resp.Data)
	}

	claims, err := jwtSvc.ValidateToken(resp.Data.AccessToken)
	if err != nil {
		t.Fatalf("issued token invalid: %v", err)
	}
	if claims.Role != models.RoleAdmin {
		t.Errorf("role claim = %s, want admin", claims.Role)
	}
}

func TestLogin_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"bad json", `{`, http.StatusBadRequest, "BAD_REQUEST"},
		{"missing password", `{"username":"admin"}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"wrong password", `{"username":"admin","password":"nope"}`, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"unknown user", `{"username":"ghost","password":"RouterPass2024"}`, http.StatusUnauthorized, "UNAUTHORIZED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t)
			rec := postLogin(h, tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantCode) {
				t.Errorf("body %q should contain %q", rec.Body.String(), tt.wantCode)
			}
		})
	}
}

func TestLogin_Lockout(t *testing.T) {
	h, _ := newTestHandler(t)

	postLogin(h, `{"username":"admin","password":"nope"}`)
	postLogin(h, `{"username":"admin","password":"nope"}`)

	rec := postLogin(h, `{"username":"admin","password":"RouterPass2024"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ACCOUNT_LOCKED") {
		t.Errorf("body = %s", rec.Body.String())
	}
}
