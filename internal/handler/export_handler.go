package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-cover-api/internal/service"
	"github.com/noah-isme/sma-cover-api/pkg/response"
)

// ExportHandler manages asynchronous report rendering and downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Enqueue godoc
// @Summary Queue background rendering of a run report
// @Tags Exports
// @Produce json
// @Param id path string true "Run ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 202 {object} response.Envelope
// @Router /coverage/runs/{id}/export [post]
func (h *ExportHandler) Enqueue(c *gin.Context) {
	format := c.DefaultQuery("format", service.ExportFormatCSV)
	job, err := h.service.Enqueue(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Download godoc
// @Summary Download a rendered report via its signed token
// @Tags Exports
// @Produce application/octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Router /exports/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, contentType, err := h.service.Download(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
