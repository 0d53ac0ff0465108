package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intervention-planner-api/internal/dto"
	"github.com/noah-isme/intervention-planner-api/internal/models"
	"github.com/noah-isme/intervention-planner-api/internal/service"
	"github.com/noah-isme/intervention-planner-api/pkg/response"
)

type availabilityManager interface {
	GetAvailability(ctx context.Context, id string) (*models.Interventionist, error)
	ReplaceAvailability(ctx context.Context, id string, req dto.UpdateAvailabilityRequest) (*models.Interventionist, error)
	ListConstraints(ctx context.Context, grade *int) ([]models.GradeLevelConstraint, error)
	CreateConstraint(ctx context.Context, req dto.CreateGradeConstraintRequest) (*models.GradeLevelConstraint, error)
	DeleteConstraint(ctx context.Context, id string) error
}

// AvailabilityHandler exposes interventionist availability and grade-level constraints.
type AvailabilityHandler struct {
	service availabilityManager
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(svc *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// GetAvailability godoc
// @Summary Get an interventionist's weekly availability
// @Tags Availability
// @Produce json
// @Param id path string true "Interventionist ID"
// @Success 200 {object} response.Envelope
// @Router /interventionists/{id}/availability [get]
func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	person, err := h.service.GetAvailability(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, person, nil)
}

// ReplaceAvailability godoc
// @Summary Replace an interventionist's weekly availability
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Interventionist ID"
// @Param payload body dto.UpdateAvailabilityRequest true "Availability blocks"
// @Success 200 {object} response.Envelope
// @Router /interventionists/{id}/availability [put]
func (h *AvailabilityHandler) ReplaceAvailability(c *gin.Context) {
	var req dto.UpdateAvailabilityRequest
	if !bindJSON(c, &req, "invalid availability payload") {
		return
	}
	person, err := h.service.ReplaceAvailability(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, person, nil)
}

// ListConstraints godoc
// @Summary List grade-level constraints
// @Tags Availability
// @Produce json
// @Param grade query int false "Grade filter"
// @Success 200 {object} response.Envelope
// @Router /grade-constraints [get]
func (h *AvailabilityHandler) ListConstraints(c *gin.Context) {
	grade, ok := optionalIntQuery(c, "grade")
	if !ok {
		return
	}
	items, err := h.service.ListConstraints(c.Request.Context(), grade)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// CreateConstraint godoc
// @Summary Add a grade-level constraint
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body dto.CreateGradeConstraintRequest true "Constraint"
// @Success 201 {object} response.Envelope
// @Router /grade-constraints [post]
func (h *AvailabilityHandler) CreateConstraint(c *gin.Context) {
	var req dto.CreateGradeConstraintRequest
	if !bindJSON(c, &req, "invalid grade constraint payload") {
		return
	}
	item, err := h.service.CreateConstraint(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// DeleteConstraint godoc
// @Summary Remove a grade-level constraint
// @Tags Availability
// @Param id path string true "Constraint ID"
// @Success 204
// @Router /grade-constraints/{id} [delete]
func (h *AvailabilityHandler) DeleteConstraint(c *gin.Context) {
	if err := h.service.DeleteConstraint(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
