package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/faculty-results-api/internal/models"
	"github.com/campusdesk/faculty-results-api/internal/service"
	appErrors "github.com/campusdesk/faculty-results-api/pkg/errors"
	"github.com/campusdesk/faculty-results-api/pkg/response"
)

// SelectionHandler wires HTTP endpoints to the selection service.
type SelectionHandler struct {
	service *service.SelectionService
}

// NewSelectionHandler creates a new handler.
func NewSelectionHandler(svc *service.SelectionService) *SelectionHandler {
	return &SelectionHandler{service: svc}
}

// Select saves or replaces the caller's teaching context.
func (h *SelectionHandler) Select(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid selection payload"))
		return
	}

	selection, err := h.service.Select(c.Request.Context(), claims.FacultyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, selection)
}

// Current returns the caller's stored teaching context.
func (h *SelectionHandler) Current(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	teaching, err := h.service.Current(c.Request.Context(), claims.FacultyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teaching)
}

// Departments lists the selectable departments.
func (h *SelectionHandler) Departments(c *gin.Context) {
	departments, err := h.service.Departments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, departments)
}
