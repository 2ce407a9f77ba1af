package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-cover-api/internal/dto"
	"github.com/noah-isme/sma-cover-api/internal/models"
	"github.com/noah-isme/sma-cover-api/internal/service"
	appErrors "github.com/noah-isme/sma-cover-api/pkg/errors"
	"github.com/noah-isme/sma-cover-api/pkg/response"
)

// TimetableHandler manages normalized timetable uploads.
type TimetableHandler struct {
	service *service.TimetableService
}

// NewTimetableHandler constructs handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Upload godoc
// @Summary Store a normalized timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Param kind path string true "Timetable kind (class or availability)"
// @Param payload body dto.UploadTimetableRequest true "Timetable payload"
// @Success 201 {object} response.Envelope
// @Router /timetables/{kind} [put]
func (h *TimetableHandler) Upload(c *gin.Context) {
	var req dto.UploadTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.service.Upload(c.Request.Context(), models.TimetableKind(c.Param("kind")), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Latest godoc
// @Summary Fetch the latest stored timetable of a kind
// @Tags Timetables
// @Produce json
// @Param kind path string true "Timetable kind (class or availability)"
// @Success 200 {object} response.Envelope
// @Router /timetables/{kind} [get]
func (h *TimetableHandler) Latest(c *gin.Context) {
	record, table, err := h.service.Latest(c.Request.Context(), models.TimetableKind(c.Param("kind")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"id":         record.ID,
		"kind":       record.Kind,
		"name":       record.Name,
		"created_at": record.CreatedAt,
		"table":      table,
	}, nil)
}
