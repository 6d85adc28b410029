package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/faculty-results-api/internal/middleware"
	"github.com/campusdesk/faculty-results-api/internal/models"
	"github.com/campusdesk/faculty-results-api/internal/service"
	appErrors "github.com/campusdesk/faculty-results-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// scopeResolver derives the teaching context for scoped endpoints. Explicit
// query parameters override the faculty's stored selection.
type scopeResolver struct {
	selection *service.SelectionService
}

// resolve returns the effective teaching context. With requireSubject set,
// a context without a pinned subject is rejected.
func (r scopeResolver) resolve(c *gin.Context, requireSubject bool) (*models.TeachingContext, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}

	if teaching, ok := teachingFromQuery(c); ok {
		if requireSubject && !teaching.HasSubject() {
			return nil, appErrors.Clone(appErrors.ErrNoSelection, "no subject selected")
		}
		return teaching, nil
	}

	if requireSubject {
		return r.selection.RequireSubject(c.Request.Context(), claims.FacultyID)
	}
	return r.selection.Current(c.Request.Context(), claims.FacultyID)
}

// teachingFromQuery builds a context from query parameters when enough of
// them are present. A bare subject_id is enough for subject-scoped calls;
// department scope needs department_id, year and scheme.
func teachingFromQuery(c *gin.Context) (*models.TeachingContext, bool) {
	subjectID := c.Query("subject_id")
	departmentID := c.Query("department_id")
	scheme := models.NormalizeScheme(c.Query("scheme"))
	year, _ := strconv.Atoi(c.Query("year"))

	if subjectID == "" && (departmentID == "" || year == 0 || scheme == "") {
		return nil, false
	}
	return &models.TeachingContext{
		Year:         year,
		Scheme:       scheme,
		DepartmentID: departmentID,
		SubjectID:    subjectID,
	}, true
}
