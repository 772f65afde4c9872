package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/good-yellow-bee/netwatch/internal/api/respond"
	"github.com/good-yellow-bee/netwatch/internal/metrics"
)

// Handler handles authentication endpoints.
type Handler struct {
	users   *Directory
	jwt     *JWTService
	lockout *LockoutTracker
	logger  *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(users *Directory, jwt *JWTService, lockout *LockoutTracker, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		users:   users,
		jwt:     jwt,
		lockout: lockout,
		logger:  logger.With(zap.String("component", "auth")),
	}
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"` // seconds
	TokenType   string `json:"token_type"`
	Role        string `json:"role"`
}

// Login exchanges a username and password for an access token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.JSONError(w, respond.NewBadRequest("invalid request body"))
		return
	}
	if req.Username == "" || req.Password == "" {
		respond.JSONError(w, respond.NewBadRequest("username and password required"))
		return
	}

	if h.lockout.IsLocked(req.Username) {
		metrics.AuthAttemptsTotal.WithLabelValues("locked").Inc()
		h.logger.Warn("login blocked: account locked",
			zap.Bool("security_event", true),
			zap.String("username", req.Username),
			zap.Duration("remaining", h.lockout.Remaining(req.Username)),
		)
		respond.JSONError(w, respond.ErrAccountLocked)
		return
	}

	user, err := h.users.Authenticate(req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			h.logger.Error("login error", zap.Error(err))
			respond.JSONError(w, respond.ErrInternalServer)
			return
		}
		locked := h.lockout.RecordFailure(req.Username)
		metrics.AuthAttemptsTotal.WithLabelValues("failure").Inc()
		h.logger.Warn("login failed",
			zap.Bool("security_event", true),
			zap.String("username", req.Username),
			zap.Bool("locked", locked),
		)
		respond.JSONError(w, respond.ErrUnauthorized)
		return
	}

	h.lockout.ClearFailures(req.Username)

	token, err := h.jwt.GenerateToken(user)
	if err != nil {
		h.logger.Error("login error: generate access token", zap.Error(err))
		respond.JSONError(w, respond.ErrInternalServer)
		return
	}

	metrics.AuthAttemptsTotal.WithLabelValues("success").Inc()
	metrics.AuthTokensIssued.Inc()
	h.logger.Info("login success", zap.String("username", user.Username), zap.String("role", string(user.Role)))

	respond.OK(w, &LoginResponse{
		AccessToken: token,
		ExpiresIn:   h.jwt.TTLSeconds(),
		TokenType:   "Bearer",
		Role:        string(user.Role),
	})
}
