// Package auth issues and verifies the short-lived map tokens that stand
// in for the mapping provider key on the client side.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/logistics/console/internal/infrastructure/config"
)

// Scopes a map token can carry
const (
	ScopeDirections = "maps:directions"
	ScopeStatic     = "maps:static"
)

// DefaultScopes are granted to every console page session
var DefaultScopes = []string{ScopeDirections, ScopeStatic}

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrMissingScope     = errors.New("token lacks required scope")
	ErrTokenRevoked     = errors.New("token has been revoked")
)

// MapClaims are the claims of a map token
type MapClaims struct {
	jwt.RegisteredClaims
	SessionID string   `json:"sid"`
	Scopes    []string `json:"scopes"`
}

// HasScope checks if the claims grant a scope
func (c *MapClaims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// RemainingTTL returns the time until the token expires
func (c *MapClaims) RemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	remaining := time.Until(c.ExpiresAt.Time)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// MapToken is an issued token
type MapToken struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	SessionID string    `json:"session_id"`
	Scopes    []string  `json:"scopes"`
}

// MapTokenService issues, validates and revokes map tokens
type MapTokenService struct {
	secret  []byte
	ttl     time.Duration
	issuer  string
	revoked RevocationStore
	now     func() time.Time
}

// NewMapTokenService creates a new map token service
func NewMapTokenService(cfg config.MapTokenConfig, revoked RevocationStore) *MapTokenService {
	if revoked == nil {
		revoked = NewMemoryRevocationStore()
	}
	return &MapTokenService{
		secret:  []byte(cfg.Secret),
		ttl:     cfg.TTL,
		issuer:  cfg.Issuer,
		revoked: revoked,
		now:     time.Now,
	}
}

// GenerateSecret returns a random hex secret for deployments that do not configure one.
// Tokens signed with it do not survive a restart.
func GenerateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate map token secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// TTL returns the token lifetime
func (s *MapTokenService) TTL() time.Duration {
	return s.ttl
}

// Issue creates a token bound to sessionID. An empty sessionID gets a fresh one.
func (s *MapTokenService) Issue(sessionID string, scopes ...string) (*MapToken, error) {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &MapClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   sessionID,
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		SessionID: sessionID,
		Scopes:    scopes,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign map token: %w", err)
	}

	return &MapToken{
		Token:     signed,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		SessionID: sessionID,
		Scopes:    scopes,
	}, nil
}

func (s *MapTokenService) parse(tokenString string) (*MapClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.issuer),
		jwt.WithTimeFunc(s.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.ID == "" || claims.SessionID == "" {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// Validate checks signature, expiry, revocation and scope
func (s *MapTokenService) Validate(ctx context.Context, tokenString, scope string) (*MapClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	if scope != "" && !claims.HasScope(scope) {
		return nil, ErrMissingScope
	}
	return claims, nil
}

// Revoke invalidates a token until its natural expiry.
// Revoking an already expired token is a no-op.
func (s *MapTokenService) Revoke(ctx context.Context, tokenString string) error {
	claims, err := s.parse(tokenString)
	if errors.Is(err, ErrExpiredToken) {
		return nil
	}
	if err != nil {
		return err
	}
	if claims.RemainingTTL() <= 0 {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}
