// Package auth provides authentication for the NetWatch API: configured
// users, password checks, login lockout, and JWT access tokens.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/good-yellow-bee/netwatch/internal/models"
)

const (
	tokenIssuer   = "netwatch"
	tokenAudience = "netwatch-api"
	clockSkew     = 30 * time.Second
)

// Claims are the access token claims. Subject carries the username.
type Claims struct {
	jwt.RegisteredClaims
	Username string      `json:"usr"`
	Role     models.Role `json:"role"`
}

// JWTService signs and verifies HS256 access tokens.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
	now    func() time.Time
}

// NewJWTService creates a service signing with secret.
func NewJWTService(secret []byte, ttl time.Duration) *JWTService {
	return &JWTService{
		secret: secret,
		ttl:    ttl,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(tokenIssuer),
			jwt.WithAudience(tokenAudience),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithLeeway(clockSkew),
		),
		now: time.Now,
	}
}

// GenerateToken issues an access token for user with the default TTL.
func (s *JWTService) GenerateToken(user *models.User) (string, error) {
	return s.GenerateTokenWithTTL(user, s.ttl)
}

// GenerateTokenWithTTL issues an access token with an explicit lifetime.
// Each token gets a random ID so individual tokens can be traced in logs.
func (s *JWTService) GenerateTokenWithTTL(user *models.User, ttl time.Duration) (string, error) {
	if user == nil || user.Username == "" {
		return "", fmt.Errorf("token subject is required")
	}
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: user.Username,
		Role:     user.Role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature, issuer, audience and expiry, and
// returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if claims.Subject == "" || claims.Username != claims.Subject {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// TTL returns the default token lifetime.
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// TTLSeconds returns the default token lifetime in seconds.
func (s *JWTService) TTLSeconds() int {
	return int(s.ttl.Seconds())
}
