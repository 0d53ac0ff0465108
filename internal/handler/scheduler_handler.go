package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intervention-planner-api/internal/dto"
	"github.com/noah-isme/intervention-planner-api/internal/service"
	"github.com/noah-isme/intervention-planner-api/pkg/response"
)

type schedulePlanner interface {
	CalculateSuggestions(ctx context.Context, groupID string, req dto.SuggestionRequest) (*dto.SuggestionResponse, error)
	GenerateCycleSchedule(ctx context.Context, groupID string, req dto.CycleScheduleRequest) (*dto.CycleScheduleResult, error)
}

type sessionCommitter interface {
	SubmitCycle(ctx context.Context, groupID string, req dto.CommitCycleRequest) (*dto.CommitJob, error)
	SubmitWeekly(ctx context.Context, groupID string, req dto.CommitWeeklyRequest) (*dto.CommitJob, error)
	Job(id string) (*dto.CommitJob, error)
}

type cycleExporter interface {
	ExportCycle(ctx context.Context, groupID string, req dto.CycleScheduleRequest, format string) (*service.ExportFile, error)
}

// SchedulerHandler exposes slot suggestions, cycle previews and commits.
type SchedulerHandler struct {
	planner  schedulePlanner
	commits  sessionCommitter
	exports  cycleExporter
	jobsPath string
}

// NewSchedulerHandler constructs the handler. apiPrefix is used to build job status links.
func NewSchedulerHandler(planner *service.SchedulerService, commits *service.SessionCommitService, exports *service.ExportService, apiPrefix string) *SchedulerHandler {
	return &SchedulerHandler{planner: planner, commits: commits, exports: exports, jobsPath: strings.TrimRight(apiPrefix, "/") + "/schedule/jobs/"}
}

// Suggestions godoc
// @Summary Rank weekly time slots for a group
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param payload body dto.SuggestionRequest true "Suggestion options"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /groups/{id}/schedule/suggestions [post]
func (h *SchedulerHandler) Suggestions(c *gin.Context) {
	var req dto.SuggestionRequest
	if !bindJSON(c, &req, "invalid suggestion payload") {
		return
	}
	result, err := h.planner.CalculateSuggestions(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// CyclePreview godoc
// @Summary Preview a group's sessions across an intervention cycle
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param payload body dto.CycleScheduleRequest true "Cycle options"
// @Success 200 {object} response.Envelope
// @Router /groups/{id}/schedule/cycle [post]
func (h *SchedulerHandler) CyclePreview(c *gin.Context) {
	var req dto.CycleScheduleRequest
	if !bindJSON(c, &req, "invalid cycle payload") {
		return
	}
	result, err := h.planner.GenerateCycleSchedule(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ExportCycle godoc
// @Summary Download a cycle preview
// @Tags Scheduler
// @Accept json
// @Produce text/csv,application/pdf,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Group ID"
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Param payload body dto.CycleScheduleRequest true "Cycle options"
// @Success 200 {file} file
// @Router /groups/{id}/schedule/cycle/export [post]
func (h *SchedulerHandler) ExportCycle(c *gin.Context) {
	var req dto.CycleScheduleRequest
	if !bindJSON(c, &req, "invalid cycle payload") {
		return
	}
	file, err := h.exports.ExportCycle(c.Request.Context(), c.Param("id"), req, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// CommitCycle godoc
// @Summary Queue creation of sessions from a cycle preview
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param payload body dto.CommitCycleRequest true "Cycle commit"
// @Success 202 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /groups/{id}/schedule/cycle/commit [post]
func (h *SchedulerHandler) CommitCycle(c *gin.Context) {
	var req dto.CommitCycleRequest
	if !bindJSON(c, &req, "invalid cycle commit payload") {
		return
	}
	job, err := h.commits.SubmitCycle(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job, h.jobsPath+job.ID)
}

// CommitWeekly godoc
// @Summary Queue creation of sessions from chosen weekly slots
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param payload body dto.CommitWeeklyRequest true "Weekly commit"
// @Success 202 {object} response.Envelope
// @Router /groups/{id}/schedule/weekly/commit [post]
func (h *SchedulerHandler) CommitWeekly(c *gin.Context) {
	var req dto.CommitWeeklyRequest
	if !bindJSON(c, &req, "invalid weekly commit payload") {
		return
	}
	job, err := h.commits.SubmitWeekly(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job, h.jobsPath+job.ID)
}

// JobStatus godoc
// @Summary Report the state of a queued commit
// @Tags Scheduler
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/jobs/{jobId} [get]
func (h *SchedulerHandler) JobStatus(c *gin.Context) {
	job, err := h.commits.Job(c.Param("jobId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}
