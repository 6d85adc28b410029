package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/faculty-results-api/internal/service"
	"github.com/campusdesk/faculty-results-api/pkg/response"
)

// AnalyticsHandler wires the pass/fail analytics endpoints.
type AnalyticsHandler struct {
	service  *service.AnalyticsService
	resolver scopeResolver
}

// NewAnalyticsHandler creates a new handler.
func NewAnalyticsHandler(svc *service.AnalyticsService, selection *service.SelectionService) *AnalyticsHandler {
	return &AnalyticsHandler{service: svc, resolver: scopeResolver{selection: selection}}
}

// Summary returns the analytics payload for the caller's scope.
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	teaching, err := h.resolver.resolve(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}

	analytics, err := h.service.Summary(c.Request.Context(), *teaching)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, analytics)
}

// History probes the two prior academic sessions of the scoped subject.
func (h *AnalyticsHandler) History(c *gin.Context) {
	teaching, err := h.resolver.resolve(c, true)
	if err != nil {
		response.Error(c, err)
		return
	}

	history, err := h.service.History(c.Request.Context(), teaching.SubjectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history)
}

// YearResults drills into one historical session of a subject's course.
func (h *AnalyticsHandler) YearResults(c *gin.Context) {
	payload, err := h.service.SubjectYearResults(c.Request.Context(), c.Param("id"), c.Param("label"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payload)
}
