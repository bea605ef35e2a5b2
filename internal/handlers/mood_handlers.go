package handlers

import (
	"net/http"
	"time"

	"mindhaven/internal/common"
	"mindhaven/internal/services"

	"github.com/labstack/echo/v4"
)

// MoodHandlers handles mood tracking HTTP requests
type MoodHandlers struct {
	moodService services.MoodService
}

// NewMoodHandlers creates a new mood handlers instance
func NewMoodHandlers(moodService services.MoodService) *MoodHandlers {
	return &MoodHandlers{moodService: moodService}
}

// Record handles POST /v1/moods. Recording twice on the same day replaces
// the earlier value.
func (h *MoodHandlers) Record(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req services.RecordMoodRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	entry, err := h.moodService.Record(ctx, userID, &req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, entry)
}

// History handles GET /v1/moods?from=YYYY-MM-DD&to=YYYY-MM-DD. The range
// defaults to the last 30 days.
func (h *MoodHandlers) History(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	to := time.Now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -30)
	if v := c.QueryParam("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return common.SendValidationError(c, "from", "must be YYYY-MM-DD")
		}
		from = parsed
	}
	if v := c.QueryParam("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return common.SendValidationError(c, "to", "must be YYYY-MM-DD")
		}
		to = parsed
	}

	entries, err := h.moodService.History(ctx, userID, from, to)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, entries)
}

// Streak handles GET /v1/moods/streak
func (h *MoodHandlers) Streak(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	streak, err := h.moodService.CurrentStreak(ctx, userID)
	if err != nil {
		return common.SendServerError(c, "Failed to compute streak")
	}
	return c.JSON(http.StatusOK, map[string]int{"streak": streak})
}
