package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const accessTokenTTL = 24 * time.Hour

// SessionStore is the allowlist of live sessions. A token is only honored
// while its session ID is present here, so revocation takes effect before
// the token expires.
type SessionStore interface {
	SetSession(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// AuthService mints access tokens for authenticated users and manages the
// session allowlist behind them.
type AuthService interface {
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, time.Time, error)
	RevokeToken(ctx context.Context, tokenID string) error
}

type authService struct {
	jwtSecret string
	sessions  SessionStore
}

func NewAuthService(jwtSecret string, sessions SessionStore) AuthService {
	return &authService{jwtSecret: jwtSecret, sessions: sessions}
}

func (s *authService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, time.Time, error) {
	if s.jwtSecret == "" {
		return "", time.Time{}, fmt.Errorf("JWT secret is not configured")
	}

	expiresAt := time.Now().Add(accessTokenTTL)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	if err := s.sessions.SetSession(ctx, claims.ID, userID.String(), accessTokenTTL); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to register session: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *authService) RevokeToken(ctx context.Context, tokenID string) error {
	return s.sessions.DeleteSession(ctx, tokenID)
}
