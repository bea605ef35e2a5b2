package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"mindhaven/internal/common"
	"mindhaven/internal/models"
	"mindhaven/internal/repositories"
	"mindhaven/internal/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	authService services.AuthService
	userRepo    repositories.UserRepository
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(authService services.AuthService, userRepo repositories.UserRepository) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		userRepo:    userRepo,
	}
}

// TokenResponse carries the minted access token.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	TokenResponse
	User *models.User `json:"user"`
}

// Login handles user login with email and password
func (h *AuthHandlers) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	user, err := h.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		log.Printf("Failed to look up user by email: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to sign in")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	token, expiresAt, err := h.authService.GenerateToken(ctx, user.ID)
	if err != nil {
		log.Printf("Failed to generate token for user %s: %v", user.ID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, &LoginResponse{
		TokenResponse: TokenResponse{AccessToken: token, ExpiresAt: expiresAt},
		User:          user,
	})
}

// SignupRequest represents the signup request payload
type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// Signup handles user registration
func (h *AuthHandlers) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := common.ValidateEmail(req.Email); err != nil {
		return common.SendValidationError(c, "email", err.Error())
	}
	if len(req.Password) < 8 {
		return common.SendValidationError(c, "password", "password must be at least 8 characters")
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		return common.SendValidationError(c, "display_name", "display name is required")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if existing, err := h.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return echo.NewHTTPError(http.StatusConflict, "Email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create account")
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(req.DisplayName),
	}
	if err := h.userRepo.Create(ctx, user); err != nil {
		log.Printf("Failed to create user: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create account")
	}

	token, expiresAt, err := h.authService.GenerateToken(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusCreated, &LoginResponse{
		TokenResponse: TokenResponse{AccessToken: token, ExpiresAt: expiresAt},
		User:          user,
	})
}

// Logout handles POST /v1/auth/logout. Revoking the session makes the
// presented token unusable immediately.
func (h *AuthHandlers) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	tokenID, ok := common.GetTokenIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Token carries no revocable session")
	}

	if err := h.authService.RevokeToken(ctx, tokenID); err != nil {
		log.Printf("Failed to revoke session %s: %v", tokenID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to sign out")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

// Me handles GET /v1/auth/me for the authenticated user.
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "User")
		}
		return common.SendServerError(c, "Failed to load user")
	}
	return c.JSON(http.StatusOK, user)
}
