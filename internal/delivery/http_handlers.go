package delivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"jobclicks/internal/domain"
	"jobclicks/internal/usecase"
	"jobclicks/pkg/daterange"
	"jobclicks/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// handles HTTP requests
type HTTPHandlers struct {
	dashboardService  *usecase.DashboardService
	comparisonService *usecase.ComparisonService
	logger            *logger.Logger
	now               func() time.Time
}

// creates new HTTP handlers
func NewHTTPHandlers(
	dashboardService *usecase.DashboardService,
	comparisonService *usecase.ComparisonService,
	logger *logger.Logger,
) *HTTPHandlers {
	return &HTTPHandlers{
		dashboardService:  dashboardService,
		comparisonService: comparisonService,
		logger:            logger,
		now:               time.Now,
	}
}

type selectRangeRequest struct {
	Range string `json:"range" binding:"required"`
}

type customRangeRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// CreateSession starts a dashboard session and loads its datasets
func (h *HTTPHandlers) CreateSession(c *gin.Context) {
	requestID, ctx := h.requestContext(c)

	ref, ok := h.referenceDate(c, requestID)
	if !ok {
		return
	}

	state, err := h.dashboardService.CreateSession(ctx, ref)
	if err != nil {
		h.respondError(c, ctx, requestID, "Failed to create session", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":       state,
		"request_id": requestID,
	})
}

// GetDashboard returns the resolved view for the session's selected range
func (h *HTTPHandlers) GetDashboard(c *gin.Context) {
	requestID, ctx := h.requestContext(c)

	ref, ok := h.referenceDate(c, requestID)
	if !ok {
		return
	}

	state, err := h.dashboardService.GetDashboard(ctx, c.Param("id"), ref)
	if err != nil {
		h.respondError(c, ctx, requestID, "Failed to retrieve dashboard", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       state,
		"request_id": requestID,
	})
}

// SelectRange switches the session to a preset range card
func (h *HTTPHandlers) SelectRange(c *gin.Context) {
	requestID, ctx := h.requestContext(c)

	var req selectRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request body",
			"message":    "range is required",
			"request_id": requestID,
		})
		return
	}

	ref, ok := h.referenceDate(c, requestID)
	if !ok {
		return
	}

	r, err := domain.ParseTimeRange(req.Range)
	if err != nil {
		h.respondError(c, ctx, requestID, "Invalid range", err)
		return
	}

	state, err := h.dashboardService.SelectRange(ctx, c.Param("id"), r, ref)
	if err != nil {
		h.respondError(c, ctx, requestID, "Failed to select range", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       state,
		"request_id": requestID,
	})
}

// ApplyCustomRange validates and activates a custom start/end pair
func (h *HTTPHandlers) ApplyCustomRange(c *gin.Context) {
	requestID, ctx := h.requestContext(c)

	var req customRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid request body",
			"message":    err.Error(),
			"request_id": requestID,
		})
		return
	}

	ref, ok := h.referenceDate(c, requestID)
	if !ok {
		return
	}

	state, err := h.dashboardService.ApplyCustomRange(ctx, c.Param("id"), req.StartDate, req.EndDate, ref)
	if err != nil {
		h.respondError(c, ctx, requestID, "Failed to apply custom range", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       state,
		"request_id": requestID,
	})
}

// ClearCustomRange returns the session to its last preset range
func (h *HTTPHandlers) ClearCustomRange(c *gin.Context) {
	requestID, ctx := h.requestContext(c)

	ref, ok := h.referenceDate(c, requestID)
	if !ok {
		return
	}

	state, err := h.dashboardService.ClearCustomRange(ctx, c.Param("id"), ref)
	if err != nil {
		h.respondError(c, ctx, requestID, "Failed to clear custom range", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       state,
		"request_id": requestID,
	})
}

// Refresh refetches the summary, weekly and monthly datasets
func (h *HTTPHandlers) Refresh(c *gin.Context) {
	requestID, ctx := h.requestContext(c)

	ref, ok := h.referenceDate(c, requestID)
	if !ok {
		return
	}

	state, err := h.dashboardService.Refresh(ctx, c.Param("id"), ref)
	if err != nil {
		h.respondError(c, ctx, requestID, "Failed to refresh session", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       state,
		"request_id": requestID,
	})
}

// ExportTopPerformers sends the resolved top performers to the export sink
func (h *HTTPHandlers) ExportTopPerformers(c *gin.Context) {
	requestID, ctx := h.requestContext(c)

	ref, ok := h.referenceDate(c, requestID)
	if !ok {
		return
	}

	count, err := h.dashboardService.ExportTopPerformers(ctx, c.Param("id"), ref)
	if err != nil {
		h.respondError(c, ctx, requestID, "Export failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Export completed successfully",
		"exported":   count,
		"request_id": requestID,
	})
}

// DeleteSession forgets a session
func (h *HTTPHandlers) DeleteSession(c *gin.Context) {
	requestID, ctx := h.requestContext(c)

	if err := h.dashboardService.DeleteSession(ctx, c.Param("id")); err != nil {
		h.respondError(c, ctx, requestID, "Failed to delete session", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CompareWeeks returns the current and previous rolling weeks side by side
func (h *HTTPHandlers) CompareWeeks(c *gin.Context) {
	requestID, ctx := h.requestContext(c)

	ref, ok := h.referenceDate(c, requestID)
	if !ok {
		return
	}

	comparison, err := h.comparisonService.CompareWeeks(ctx, ref)
	if err != nil {
		h.respondError(c, ctx, requestID, "Week comparison failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       comparison,
		"request_id": requestID,
	})
}

// GetAPIInfo returns API v1 information and available endpoints
func (h *HTTPHandlers) GetAPIInfo(c *gin.Context) {
	requestID, _ := h.requestContext(c)

	c.JSON(http.StatusOK, gin.H{
		"api_version": "v1",
		"service":     "Job Click Analytics",
		"version":     "1.0.0",
		"description": "Click analytics for shortened job-posting URLs",
		"endpoints": gin.H{
			"sessions": gin.H{
				"create":        "POST /api/v1/sessions",
				"dashboard":     "GET /api/v1/sessions/:id/dashboard",
				"select_range":  "PUT /api/v1/sessions/:id/range",
				"custom_range":  "POST /api/v1/sessions/:id/custom-range",
				"clear_custom":  "DELETE /api/v1/sessions/:id/custom-range",
				"refresh":       "POST /api/v1/sessions/:id/refresh",
				"export":        "POST /api/v1/sessions/:id/export",
				"delete":        "DELETE /api/v1/sessions/:id",
				"reference_day": "Optional date query parameter (YYYY-MM-DD) on every endpoint",
			},
			"comparison": gin.H{
				"weekly": "GET /api/v1/comparison/weekly?date=YYYY-MM-DD",
			},
		},
		"ranges":     domain.PresetRanges,
		"request_id": requestID,
	})
}

// HealthCheck returns the health status of the service
func (h *HTTPHandlers) HealthCheck(c *gin.Context) {
	requestID, _ := h.requestContext(c)

	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"timestamp":  h.now().UTC().Format(time.RFC3339),
		"service":    "jobclicks",
		"version":    "1.0.0",
		"request_id": requestID,
	})
}

// requestContext reuses the id set by the RequestID middleware
func (h *HTTPHandlers) requestContext(c *gin.Context) (string, context.Context) {
	requestID := c.GetString("request_id")
	if requestID == "" {
		requestID = uuid.New().String()
	}
	ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID)
	return requestID, ctx
}

// referenceDate reads the optional date query parameter; without it the
// reference day is the current wall clock.
func (h *HTTPHandlers) referenceDate(c *gin.Context, requestID string) (time.Time, bool) {
	dateStr := c.Query("date")
	if dateStr == "" {
		return h.now(), true
	}

	ref, err := daterange.Parse(dateStr, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Invalid date format",
			"message":    "Date must be in YYYY-MM-DD format",
			"request_id": requestID,
		})
		return time.Time{}, false
	}
	return ref, true
}

func (h *HTTPHandlers) respondError(c *gin.Context, ctx context.Context, requestID, message string, err error) {
	status := statusFor(err)

	log := h.logger.WithContext(ctx).WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		log.Error(message)
	} else {
		log.Info(message)
	}

	c.JSON(status, gin.H{
		"error":      message,
		"message":    err.Error(),
		"request_id": requestID,
	})
}

func statusFor(err error) int {
	var validationErr *domain.ValidationError
	var comparisonErr *domain.ComparisonFailedError
	var requestErr *domain.RequestFailedError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrExportNotConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &comparisonErr), errors.As(err, &requestErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
