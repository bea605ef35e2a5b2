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

// JournalHandlers handles journal entry HTTP requests
type JournalHandlers struct {
	journalService services.JournalService
}

// NewJournalHandlers creates a new journal handlers instance
func NewJournalHandlers(journalService services.JournalService) *JournalHandlers {
	return &JournalHandlers{journalService: journalService}
}

// Create handles POST /v1/journal
func (h *JournalHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req services.CreateJournalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	entry, err := h.journalService.Create(ctx, userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrJournalQuota) {
			return echo.NewHTTPError(http.StatusPaymentRequired, "Daily journal limit reached on the FREE plan")
		}
		log.Printf("Failed to create journal entry for user %s: %v", userID, err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, entry)
}

// Get handles GET /v1/journal/:id
func (h *JournalHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	entry, err := h.journalService.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Journal entry")
		}
		return common.SendServerError(c, "Failed to load journal entry")
	}
	return c.JSON(http.StatusOK, entry)
}

// List handles GET /v1/journal
func (h *JournalHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	entries, err := h.journalService.List(ctx, userID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list journal entries")
	}
	return c.JSON(http.StatusOK, entries)
}

// Update handles PUT /v1/journal/:id
func (h *JournalHandlers) Update(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req services.CreateJournalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	entry, err := h.journalService.Update(ctx, userID, id, &req)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Journal entry")
		}
		return common.SendServerError(c, "Failed to update journal entry")
	}
	return c.JSON(http.StatusOK, entry)
}

// Delete handles DELETE /v1/journal/:id
func (h *JournalHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.journalService.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "Journal entry")
		}
		return common.SendServerError(c, "Failed to delete journal entry")
	}
	return c.NoContent(http.StatusNoContent)
}
