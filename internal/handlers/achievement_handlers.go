package handlers

import (
	"net/http"

	"mindhaven/internal/common"
	"mindhaven/internal/services"

	"github.com/labstack/echo/v4"
)

// AchievementHandlers handles achievement HTTP requests
type AchievementHandlers struct {
	achievementService services.AchievementService
}

// NewAchievementHandlers creates a new achievement handlers instance
func NewAchievementHandlers(achievementService services.AchievementService) *AchievementHandlers {
	return &AchievementHandlers{achievementService: achievementService}
}

// List handles GET /v1/achievements for the authenticated user.
func (h *AchievementHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	achievements, err := h.achievementService.List(ctx, userID)
	if err != nil {
		return common.SendServerError(c, "Failed to list achievements")
	}
	return c.JSON(http.StatusOK, achievements)
}

// Definitions handles GET /v1/achievements/catalog
func (h *AchievementHandlers) Definitions(c echo.Context) error {
	definitions, err := h.achievementService.Definitions(c.Request().Context())
	if err != nil {
		return common.SendServerError(c, "Failed to list achievement definitions")
	}
	return c.JSON(http.StatusOK, definitions)
}
