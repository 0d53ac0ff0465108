package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intervention-planner-api/internal/dto"
	"github.com/noah-isme/intervention-planner-api/internal/middleware"
	"github.com/noah-isme/intervention-planner-api/internal/models"
	appErrors "github.com/noah-isme/intervention-planner-api/pkg/errors"
)

type calendarStub struct {
	query    dto.CalendarEventQuery
	created  dto.CreateCalendarEventRequest
	deleted  string
	imported []byte
	cached   bool
}

func (s *calendarStub) List(ctx context.Context, query dto.CalendarEventQuery) ([]models.SchoolCalendarEvent, bool, error) {
	s.query = query
	return []models.SchoolCalendarEvent{{ID: "e1", Date: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), Type: models.DayHoliday}}, s.cached, nil
}

func (s *calendarStub) Create(ctx context.Context, req dto.CreateCalendarEventRequest) (*models.SchoolCalendarEvent, error) {
	s.created = req
	return &models.SchoolCalendarEvent{ID: "e2", Type: req.Type, Title: req.Title}, nil
}

func (s *calendarStub) Delete(ctx context.Context, id string) error {
	if id == "missing" {
		return appErrors.Clone(appErrors.ErrNotFound, "calendar event not found")
	}
	s.deleted = id
	return nil
}

func (s *calendarStub) ImportICS(ctx context.Context, r io.Reader) (*dto.CalendarImportResult, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.imported = raw
	return &dto.CalendarImportResult{Imported: 1}, nil
}

func calendarRouter(stub *calendarStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &CalendarHandler{service: stub}
	r := gin.New()
	r.Use(middleware.WithResponseMeta())
	r.GET("/calendar/events", h.List)
	r.POST("/calendar/events", h.Create)
	r.DELETE("/calendar/events/:id", h.Delete)
	r.POST("/calendar/import", h.Import)
	return r
}

func TestCalendarHandlerListReportsCacheHit(t *testing.T) {
	stub := &calendarStub{cached: true}
	r := calendarRouter(stub)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/calendar/events?from=2024-01-01&to=2024-01-31", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-01-01", stub.query.From)
	assert.Equal(t, "2024-01-31", stub.query.To)
	assert.Contains(t, w.Body.String(), `"cache_hit":true`)
	assert.Contains(t, w.Body.String(), `"e1"`)
}

func TestCalendarHandlerCreateAndDelete(t *testing.T) {
	stub := &calendarStub{}
	r := calendarRouter(stub)

	w := postJSON(r, "/calendar/events", `{"date":"2024-02-19","type":"holiday","title":"Presidents Day"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Presidents Day", stub.created.Title)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/calendar/events/e2", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "e2", stub.deleted)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/calendar/events/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCalendarHandlerImport(t *testing.T) {
	stub := &calendarStub{}
	r := calendarRouter(stub)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "district.ics")
	require.NoError(t, err)
	_, err = part.Write([]byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/calendar/import", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, string(stub.imported), "BEGIN:VCALENDAR")
}

func TestCalendarHandlerImportRequiresFile(t *testing.T) {
	r := calendarRouter(&calendarStub{})

	w := postJSON(r, "/calendar/import", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "file is required")
}
