package middleware

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"go.uber.org/zap"
)

// APIKeyHeader carries the sample source credential.
const APIKeyHeader = "X-API-Key"

// APIKeyAuth returns middleware that accepts requests carrying one of keys.
// With no keys configured every request is rejected.
func APIKeyAuth(keys []string, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(APIKeyHeader)
			if provided == "" || !validAPIKey(keys, provided) {
				logger.Warn("API key rejected",
					zap.Bool("security_event", true),
					zap.String("remote_addr", r.RemoteAddr),
					zap.Bool("missing", provided == ""),
				)
				jsonErrorBody(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing API key")
				return
			}

			ctx := context.WithValue(r.Context(), apiKeyKey, keyID(provided))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAPIKeyID returns a short, non-secret identifier of the key used.
func GetAPIKeyID(ctx context.Context) string {
	if v, ok := ctx.Value(apiKeyKey).(string); ok {
		return v
	}
	return ""
}

func validAPIKey(keys []string, provided string) bool {
	ok := false
	for _, k := range keys {
		if subtle.ConstantTimeCompare([]byte(provided), []byte(k)) == 1 {
			ok = true
		}
	}
	return ok
}

func keyID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:4])
}
