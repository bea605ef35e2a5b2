package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"mindhaven/internal/common"
	"mindhaven/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// MeditationHandlers handles the guided-meditation catalog requests
type MeditationHandlers struct {
	meditationService services.MeditationService
}

// NewMeditationHandlers creates a new meditation handlers instance
func NewMeditationHandlers(meditationService services.MeditationService) *MeditationHandlers {
	return &MeditationHandlers{meditationService: meditationService}
}

// List handles GET /v1/meditations. Premium sessions are listed to every
// tier; only playback is gated.
func (h *MeditationHandlers) List(c echo.Context) error {
	sessions, err := h.meditationService.List(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return common.SendServerError(c, "Failed to list meditations")
	}
	return c.JSON(http.StatusOK, sessions)
}

// Get handles GET /v1/meditations/:id
func (h *MeditationHandlers) Get(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	session, err := h.meditationService.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Meditation session")
		}
		return common.SendServerError(c, "Failed to load meditation session")
	}
	return c.JSON(http.StatusOK, session)
}

// Play handles GET /v1/meditations/:id/play and returns a short-lived
// audio URL.
func (h *MeditationHandlers) Play(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	url, err := h.meditationService.PlaybackURL(ctx, userID, id)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return common.SendNotFoundError(c, "Meditation session")
		case errors.Is(err, services.ErrPremiumContent):
			return echo.NewHTTPError(http.StatusForbidden, "Premium content requires a paid plan")
		default:
			return common.SendServerError(c, "Failed to prepare playback")
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

// Create handles POST /admin/meditations. The audio file arrives as
// multipart form data alongside the catalog fields.
func (h *MeditationHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	title := c.FormValue("title")
	category := c.FormValue("category")
	if title == "" {
		return common.SendValidationError(c, "title", "title is required")
	}
	if category == "" {
		return common.SendValidationError(c, "category", "category is required")
	}
	duration, err := strconv.Atoi(c.FormValue("duration_seconds"))
	if err != nil || duration <= 0 {
		return common.SendValidationError(c, "duration_seconds", "duration_seconds must be a positive number")
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return common.SendValidationError(c, "audio", "an audio file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read audio upload")
	}
	defer file.Close()

	session, err := h.meditationService.Upload(ctx, &services.UploadMeditationRequest{
		Title:           title,
		Category:        category,
		DurationSeconds: duration,
		Premium:         c.FormValue("premium") == "true",
		Audio:           file,
		Size:            fileHeader.Size,
	})
	if err != nil {
		log.Printf("Failed to upload meditation session: %v", err)
		return common.SendServerError(c, "Failed to upload meditation session")
	}
	return c.JSON(http.StatusCreated, session)
}

// Delete handles DELETE /admin/meditations/:id
func (h *MeditationHandlers) Delete(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.meditationService.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Meditation session")
		}
		return common.SendServerError(c, "Failed to delete meditation session")
	}
	return c.NoContent(http.StatusNoContent)
}
