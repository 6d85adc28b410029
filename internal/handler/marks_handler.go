package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/faculty-results-api/internal/models"
	"github.com/campusdesk/faculty-results-api/internal/service"
	appErrors "github.com/campusdesk/faculty-results-api/pkg/errors"
	"github.com/campusdesk/faculty-results-api/pkg/response"
)

// MarksHandler wires the roster and manual marks-entry endpoints.
type MarksHandler struct {
	service  *service.MarksService
	resolver scopeResolver
}

// NewMarksHandler creates a new handler.
func NewMarksHandler(svc *service.MarksService, selection *service.SelectionService) *MarksHandler {
	return &MarksHandler{service: svc, resolver: scopeResolver{selection: selection}}
}

// Roster lists the students of the caller's scope in roll-number order.
func (h *MarksHandler) Roster(c *gin.Context) {
	teaching, err := h.resolver.resolve(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}

	students, err := h.service.Roster(c.Request.Context(), *teaching)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, map[string]interface{}{"count": len(students)})
}

// SaveMarks upserts a bulk JSON marks submission against the scoped subject.
func (h *MarksHandler) SaveMarks(c *gin.Context) {
	teaching, err := h.resolver.resolve(c, true)
	if err != nil {
		response.Error(c, err)
		return
	}

	var submission models.MarksSubmission
	if err := c.ShouldBindJSON(&submission); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid marks payload"))
		return
	}

	summary, err := h.service.SaveMarks(c.Request.Context(), *teaching, submission)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}
