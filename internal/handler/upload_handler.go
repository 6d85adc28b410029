package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/faculty-results-api/internal/service"
	"github.com/campusdesk/faculty-results-api/internal/spreadsheet"
	appErrors "github.com/campusdesk/faculty-results-api/pkg/errors"
	"github.com/campusdesk/faculty-results-api/pkg/response"
)

// uploadFormField is the multipart field carrying the spreadsheet.
const uploadFormField = "excel_file"

// UploadHandler wires the spreadsheet ingestion endpoints.
type UploadHandler struct {
	imports     *service.ImportService
	analytics   *service.AnalyticsService
	exports     *service.ExportService
	resolver    scopeResolver
	maxFileSize int64
}

// NewUploadHandler creates a new handler.
func NewUploadHandler(imports *service.ImportService, analytics *service.AnalyticsService, exports *service.ExportService, selection *service.SelectionService, maxFileSize int64) *UploadHandler {
	return &UploadHandler{
		imports:     imports,
		analytics:   analytics,
		exports:     exports,
		resolver:    scopeResolver{selection: selection},
		maxFileSize: maxFileSize,
	}
}

// UploadMarks ingests a marks template against the selected subject.
func (h *UploadHandler) UploadMarks(c *gin.Context) {
	teaching, err := h.resolver.resolve(c, true)
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.openUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	summary, err := h.imports.ImportMarks(c.Request.Context(), *teaching, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// UploadResults ingests a bulk results file and returns the refreshed
// analytics alongside the import summary.
func (h *UploadHandler) UploadResults(c *gin.Context) {
	teaching, err := h.resolver.resolve(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.openUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	summary, err := h.imports.ImportResults(c.Request.Context(), *teaching, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	analysis, err := h.analytics.Summary(c.Request.Context(), *teaching)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"summary": summary, "analysis": analysis})
}

// MarksTemplate serves the downloadable marks-entry template.
func (h *UploadHandler) MarksTemplate(c *gin.Context) {
	buf, err := h.exports.MarksTemplate()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, "marks_template.xlsx", spreadsheet.ContentType, buf.Bytes())
}

// ResultsTemplate serves the downloadable bulk-results template.
func (h *UploadHandler) ResultsTemplate(c *gin.Context) {
	buf, err := h.exports.ResultsTemplate()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, "results_template.xlsx", spreadsheet.ContentType, buf.Bytes())
}

func (h *UploadHandler) openUpload(c *gin.Context) (multipart.File, error) {
	header, err := c.FormFile(uploadFormField)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no file uploaded")
	}
	if h.maxFileSize > 0 && header.Size > h.maxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file exceeds the upload size limit")
	}

	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMalformedFile.Code, appErrors.ErrMalformedFile.Status, "could not read uploaded file")
	}
	return file, nil
}
