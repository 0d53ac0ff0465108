package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intervention-planner-api/internal/dto"
	"github.com/noah-isme/intervention-planner-api/internal/models"
	appErrors "github.com/noah-isme/intervention-planner-api/pkg/errors"
)

type availabilityStub struct {
	replaced   dto.UpdateAvailabilityRequest
	grade      *int
	constraint dto.CreateGradeConstraintRequest
}

func (s *availabilityStub) GetAvailability(ctx context.Context, id string) (*models.Interventionist, error) {
	if id == "missing" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "interventionist not found")
	}
	return &models.Interventionist{ID: id, Availability: models.WeeklyTimeBlocks{}}, nil
}

func (s *availabilityStub) ReplaceAvailability(ctx context.Context, id string, req dto.UpdateAvailabilityRequest) (*models.Interventionist, error) {
	s.replaced = req
	return &models.Interventionist{ID: id, Availability: req.Availability}, nil
}

func (s *availabilityStub) ListConstraints(ctx context.Context, grade *int) ([]models.GradeLevelConstraint, error) {
	s.grade = grade
	return []models.GradeLevelConstraint{}, nil
}

func (s *availabilityStub) CreateConstraint(ctx context.Context, req dto.CreateGradeConstraintRequest) (*models.GradeLevelConstraint, error) {
	s.constraint = req
	return &models.GradeLevelConstraint{ID: "c1", Grade: req.Grade, Label: req.Label}, nil
}

func (s *availabilityStub) DeleteConstraint(ctx context.Context, id string) error {
	return nil
}

func availabilityRouter(stub *availabilityStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &AvailabilityHandler{service: stub}
	r := gin.New()
	r.GET("/interventionists/:id/availability", h.GetAvailability)
	r.PUT("/interventionists/:id/availability", h.ReplaceAvailability)
	r.GET("/grade-constraints", h.ListConstraints)
	r.POST("/grade-constraints", h.CreateConstraint)
	r.DELETE("/grade-constraints/:id", h.DeleteConstraint)
	return r
}

func TestAvailabilityHandlerGet(t *testing.T) {
	r := availabilityRouter(&availabilityStub{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/interventionists/i1/availability", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/interventionists/missing/availability", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAvailabilityHandlerReplace(t *testing.T) {
	stub := &availabilityStub{}
	r := availabilityRouter(stub)

	req := httptest.NewRequest(http.MethodPut, "/interventionists/i1/availability",
		strings.NewReader(`{"availability":[{"days":["monday"],"start_time":"08:00","end_time":"12:00"}]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, stub.replaced.Availability, 1)
	assert.Equal(t, []models.WeekDay{models.Monday}, stub.replaced.Availability[0].Days)
	assert.Equal(t, "12:00", stub.replaced.Availability[0].EndTime)
}

func TestAvailabilityHandlerListConstraintsGradeFilter(t *testing.T) {
	stub := &availabilityStub{}
	r := availabilityRouter(stub)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/grade-constraints?grade=3", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, stub.grade)
	assert.Equal(t, 3, *stub.grade)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/grade-constraints", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, stub.grade)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/grade-constraints?grade=third", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailabilityHandlerCreateConstraint(t *testing.T) {
	stub := &availabilityStub{}
	r := availabilityRouter(stub)

	w := postJSON(r, "/grade-constraints", `{"grade":2,"label":"Lunch","type":"lunch","schedule":{"days":["monday"],"start_time":"11:30","end_time":"12:00"}}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.ConstraintLunch, stub.constraint.Type)
	assert.Equal(t, "11:30", stub.constraint.Schedule.StartTime)
}
