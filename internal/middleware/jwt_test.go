package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mindhaven/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testJWTSecret = "jwt_test_secret"

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

func mintToken(t *testing.T, userID uuid.UUID, tokenID string) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		ID:        tokenID,
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	assert.NoError(t, err)
	return signed
}

func authRequest(sessions *MockSessionStore, token string) (*httptest.ResponseRecorder, *uuid.UUID) {
	var seenUser *uuid.UUID

	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		if userID, ok := common.GetUserIDFromContext(c.Request().Context()); ok {
			seenUser = &userID
		}
		return c.NoContent(http.StatusOK)
	}, JWTMiddleware(testJWTSecret, "", sessions))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seenUser
}

func TestJWTMiddleware_LiveSession(t *testing.T) {
	userID := uuid.New()
	tokenID := uuid.NewString()
	sessions := new(MockSessionStore)
	sessions.On("GetSession", mock.Anything, tokenID).Return(userID.String(), nil)

	rec, seenUser := authRequest(sessions, mintToken(t, userID, tokenID))

	assert.Equal(t, http.StatusOK, rec.Code)
	if assert.NotNil(t, seenUser) {
		assert.Equal(t, userID, *seenUser)
	}
}

func TestJWTMiddleware_RevokedSession(t *testing.T) {
	userID := uuid.New()
	tokenID := uuid.NewString()
	sessions := new(MockSessionStore)
	sessions.On("GetSession", mock.Anything, tokenID).Return("", nil)

	rec, _ := authRequest(sessions, mintToken(t, userID, tokenID))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddleware_SessionStoreOutageAllows(t *testing.T) {
	userID := uuid.New()
	tokenID := uuid.NewString()
	sessions := new(MockSessionStore)
	sessions.On("GetSession", mock.Anything, tokenID).Return("", assert.AnError)

	rec, _ := authRequest(sessions, mintToken(t, userID, tokenID))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTMiddleware_MissingToken(t *testing.T) {
	rec, _ := authRequest(new(MockSessionStore), "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMiddleware_TamperedToken(t *testing.T) {
	token := mintToken(t, uuid.New(), uuid.NewString())

	rec, _ := authRequest(new(MockSessionStore), token+"x")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
