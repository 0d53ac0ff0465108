package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intervention-planner-api/internal/dto"
	"github.com/noah-isme/intervention-planner-api/internal/middleware"
	"github.com/noah-isme/intervention-planner-api/internal/models"
	"github.com/noah-isme/intervention-planner-api/internal/service"
	appErrors "github.com/noah-isme/intervention-planner-api/pkg/errors"
	"github.com/noah-isme/intervention-planner-api/pkg/response"
)

type calendarManager interface {
	List(ctx context.Context, query dto.CalendarEventQuery) ([]models.SchoolCalendarEvent, bool, error)
	Create(ctx context.Context, req dto.CreateCalendarEventRequest) (*models.SchoolCalendarEvent, error)
	Delete(ctx context.Context, id string) error
	ImportICS(ctx context.Context, r io.Reader) (*dto.CalendarImportResult, error)
}

// CalendarHandler manages non-student days.
type CalendarHandler struct {
	service calendarManager
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(svc *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// List godoc
// @Summary List non-student days
// @Tags Calendar
// @Produce json
// @Param from query string false "Inclusive start date (YYYY-MM-DD)"
// @Param to query string false "Inclusive end date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /calendar/events [get]
func (h *CalendarHandler) List(c *gin.Context) {
	var query dto.CalendarEventQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid calendar query"))
		return
	}
	events, cached, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, events, nil, middleware.ResponseMeta(c))
}

// Create godoc
// @Summary Add a non-student day or range
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body dto.CreateCalendarEventRequest true "Event"
// @Success 201 {object} response.Envelope
// @Router /calendar/events [post]
func (h *CalendarHandler) Create(c *gin.Context) {
	var req dto.CreateCalendarEventRequest
	if !bindJSON(c, &req, "invalid calendar event payload") {
		return
	}
	event, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Delete godoc
// @Summary Remove a non-student day
// @Tags Calendar
// @Param id path string true "Event ID"
// @Success 204
// @Router /calendar/events/{id} [delete]
func (h *CalendarHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Import godoc
// @Summary Import all-day events from an iCalendar file
// @Tags Calendar
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "ICS file"
// @Success 201 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /calendar/import [post]
func (h *CalendarHandler) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read upload"))
		return
	}
	defer file.Close()

	result, err := h.service.ImportICS(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
