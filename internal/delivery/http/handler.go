package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/beerlens/backend/internal/domain"
	"github.com/beerlens/backend/internal/logging"
	"github.com/beerlens/backend/internal/render"
	"github.com/beerlens/backend/internal/usecase"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatusClientClosedRequest is returned when the client goes away before the response is ready
const StatusClientClosedRequest = 499

// Comparison views accepted by the compare endpoint
const (
	ViewTable = "table"
	ViewCards = "cards"
	ViewRaw   = "raw"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	selection  *usecase.SelectionService
	comparison *usecase.ComparisonService
	logger     *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(selection *usecase.SelectionService, comparison *usecase.ComparisonService, logger *zap.Logger) *Handler {
	return &Handler{
		selection:  selection,
		comparison: comparison,
		logger:     logging.OrNop(logger).Named("http"),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "beerlens-backend",
		"version": "1.0.0",
	})
}

// ListSelection returns the session's selection in insertion order
func (h *Handler) ListSelection(c *gin.Context) {
	if !h.requireSelection(c) {
		return
	}
	h.respondSelection(c, http.StatusOK)
}

// AddSelection handles requests adding a product to the selection
func (h *Handler) AddSelection(c *gin.Context) {
	if !h.requireSelection(c) {
		return
	}

	var req domain.AddSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: key and url are required",
		})
		return
	}

	entry := domain.SelectionEntry{
		Key:       req.Key,
		SourceURL: req.SourceURL,
		ImageURL:  req.ImageURL,
	}
	if err := h.selection.Add(c.Request.Context(), SessionID(c), entry); err != nil {
		h.respondError(c, err)
		return
	}

	h.respondSelection(c, http.StatusCreated)
}

// RemoveSelection removes one product from the selection
func (h *Handler) RemoveSelection(c *gin.Context) {
	if !h.requireSelection(c) {
		return
	}
	key := strings.TrimPrefix(c.Param("key"), "/")
	if strings.TrimSpace(key) == "" {
		h.respondError(c, domain.ErrInvalidRequest)
		return
	}
	if err := h.selection.Remove(c.Request.Context(), SessionID(c), key); err != nil {
		h.respondError(c, err)
		return
	}
	h.respondSelection(c, http.StatusOK)
}

// ClearSelection empties the selection
func (h *Handler) ClearSelection(c *gin.Context) {
	if !h.requireSelection(c) {
		return
	}
	if err := h.selection.Clear(c.Request.Context(), SessionID(c)); err != nil {
		h.respondError(c, err)
		return
	}
	h.respondSelection(c, http.StatusOK)
}

// Compare runs a comparison over the session's selection and renders the
// result in the view named by the "view" query parameter.
func (h *Handler) Compare(c *gin.Context) {
	if !h.requireSelection(c) {
		return
	}
	if h.comparison == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Comparison service not configured",
		})
		return
	}

	view := c.DefaultQuery("view", ViewTable)
	if view != ViewTable && view != ViewCards && view != ViewRaw {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid view: must be table, cards or raw",
		})
		return
	}

	ctx := c.Request.Context()
	entries, err := h.selection.List(ctx, SessionID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.comparison.Run(ctx, entries, nil)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var body any
	switch view {
	case ViewCards:
		body = render.Cards(result.Items)
	case ViewRaw:
		body = result.Items
	default:
		body = render.Table(result.Items)
	}

	c.JSON(http.StatusOK, gin.H{
		"view":       view,
		"items":      body,
		"errorCount": result.ErrorCount,
	})
}

func (h *Handler) requireSelection(c *gin.Context) bool {
	if h.selection == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Selection service not configured",
		})
		return false
	}
	return true
}

func (h *Handler) respondSelection(c *gin.Context, status int) {
	entries, err := h.selection.List(c.Request.Context(), SessionID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(status, gin.H{
		"items": entries,
		"count": len(entries),
		"max":   h.selection.MaxSelection(),
	})
}

// respondError maps domain errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status, message := statusFor(err)
	if status == StatusClientClosedRequest {
		h.logger.Debug("request cancelled by client", zap.String("path", c.FullPath()))
	} else if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"error": message})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, "Invalid request: key and url are required"
	case errors.Is(err, domain.ErrSelectionFull):
		return http.StatusConflict, "Selection is full: remove a product before adding another"
	case errors.Is(err, domain.ErrInsufficientSelection):
		return http.StatusUnprocessableEntity, "Select at least 2 products to compare"
	case errors.Is(err, domain.ErrEntryNotFound):
		return http.StatusNotFound, "Product is not in the selection"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Comparison timed out"
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "Request cancelled"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
