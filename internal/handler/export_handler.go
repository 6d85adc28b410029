package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/faculty-results-api/internal/service"
	"github.com/campusdesk/faculty-results-api/internal/spreadsheet"
	"github.com/campusdesk/faculty-results-api/pkg/response"
)

// ExportHandler wires the download endpoints and result clearing.
type ExportHandler struct {
	service  *service.ExportService
	resolver scopeResolver
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService, selection *service.SelectionService) *ExportHandler {
	return &ExportHandler{service: svc, resolver: scopeResolver{selection: selection}}
}

// AnalysisWorkbook serves the per-course analysis as a workbook download.
func (h *ExportHandler) AnalysisWorkbook(c *gin.Context) {
	teaching, err := h.resolver.resolve(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}

	buf, err := h.service.AnalysisWorkbook(c.Request.Context(), *teaching)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, "result_analysis.xlsx", spreadsheet.ContentType, buf.Bytes())
}

// ResultsWorkbook serves the flat student result list as a workbook download.
func (h *ExportHandler) ResultsWorkbook(c *gin.Context) {
	teaching, err := h.resolver.resolve(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}

	buf, err := h.service.ResultsWorkbook(c.Request.Context(), *teaching)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, "student_results.xlsx", spreadsheet.ContentType, buf.Bytes())
}

// ResultsCSV serves the flat student result list as CSV.
func (h *ExportHandler) ResultsCSV(c *gin.Context) {
	teaching, err := h.resolver.resolve(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload, err := h.service.ResultsCSV(c.Request.Context(), *teaching)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, "student_results.csv", "text/csv", payload)
}

// AnalysisPDF serves the analysis summary as a PDF download.
func (h *ExportHandler) AnalysisPDF(c *gin.Context) {
	teaching, err := h.resolver.resolve(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload, err := h.service.AnalysisPDF(c.Request.Context(), *teaching)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, "result_analysis.pdf", "application/pdf", payload)
}

// DeleteResults clears every result of the scoped subject.
func (h *ExportHandler) DeleteResults(c *gin.Context) {
	teaching, err := h.resolver.resolve(c, true)
	if err != nil {
		response.Error(c, err)
		return
	}

	deleted, err := h.service.DeleteResults(c.Request.Context(), *teaching)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": deleted})
}
