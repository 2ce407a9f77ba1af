package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-cover-api/internal/dto"
	"github.com/noah-isme/sma-cover-api/internal/models"
	"github.com/noah-isme/sma-cover-api/internal/service"
	appErrors "github.com/noah-isme/sma-cover-api/pkg/errors"
	"github.com/noah-isme/sma-cover-api/pkg/response"
)

// CoverageHandler manages coverage generation and run lookup endpoints.
type CoverageHandler struct {
	service *service.CoverageService
	exports *service.ExportService
}

// NewCoverageHandler constructs handler.
func NewCoverageHandler(svc *service.CoverageService, exports *service.ExportService) *CoverageHandler {
	return &CoverageHandler{service: svc, exports: exports}
}

// Generate godoc
// @Summary Generate the day's substitute coverage plan
// @Tags Coverage
// @Accept json
// @Produce json
// @Param payload body dto.GenerateCoverageRequest true "Day and constraints"
// @Success 201 {object} response.Envelope
// @Router /coverage/generate [post]
func (h *CoverageHandler) Generate(c *gin.Context) {
	var req dto.GenerateCoverageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resp, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// ListRuns godoc
// @Summary List persisted coverage runs
// @Tags Coverage
// @Produce json
// @Param day query string false "Filter by day"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /coverage/runs [get]
func (h *CoverageHandler) ListRuns(c *gin.Context) {
	var filter models.CoverageRunFilter
	filter.Day = c.Query("day")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	runs, pagination, err := h.service.ListRuns(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, runs, pagination)
}

// GetRun godoc
// @Summary Fetch one coverage run with its decisions
// @Tags Coverage
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Router /coverage/runs/{id} [get]
func (h *CoverageHandler) GetRun(c *gin.Context) {
	resp, err := h.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Export godoc
// @Summary Download a run report synchronously
// @Tags Coverage
// @Produce text/csv
// @Param id path string true "Run ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /coverage/runs/{id}/export [get]
func (h *CoverageHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", service.ExportFormatCSV)
	data, filename, contentType, err := h.exports.Render(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
