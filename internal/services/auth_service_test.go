package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) SetSession(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	args := m.Called(ctx, sessionID, userID, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) GetSession(ctx context.Context, sessionID string) (string, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Error(1)
}

func (m *MockSessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func TestGenerateToken_RegistersSessionUnderTokenID(t *testing.T) {
	sessions := new(MockSessionStore)
	svc := NewAuthService("signing_secret", sessions)
	userID := uuid.New()

	var storedSessionID string
	sessions.On("SetSession", mock.Anything, mock.AnythingOfType("string"), userID.String(), accessTokenTTL).
		Run(func(args mock.Arguments) {
			storedSessionID = args.String(1)
		}).Return(nil)

	token, expiresAt, err := svc.GenerateToken(context.Background(), userID)

	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(accessTokenTTL), expiresAt, 5*time.Second)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("signing_secret"), nil
	})
	assert.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, storedSessionID, claims.ID)
	sessions.AssertExpectations(t)
}

func TestGenerateToken_SessionStoreFailure(t *testing.T) {
	sessions := new(MockSessionStore)
	sessions.On("SetSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)
	svc := NewAuthService("signing_secret", sessions)

	_, _, err := svc.GenerateToken(context.Background(), uuid.New())

	assert.Error(t, err)
}

func TestGenerateToken_MissingSecret(t *testing.T) {
	svc := NewAuthService("", new(MockSessionStore))

	_, _, err := svc.GenerateToken(context.Background(), uuid.New())

	assert.Error(t, err)
}

func TestRevokeToken(t *testing.T) {
	sessions := new(MockSessionStore)
	sessions.On("DeleteSession", mock.Anything, "session_1").Return(nil)
	svc := NewAuthService("signing_secret", sessions)

	assert.NoError(t, svc.RevokeToken(context.Background(), "session_1"))
	sessions.AssertExpectations(t)
}
