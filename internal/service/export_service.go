package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/intervention-planner-api/internal/dto"
	"github.com/noah-isme/intervention-planner-api/internal/models"
	"github.com/noah-isme/intervention-planner-api/internal/scheduler"
	appErrors "github.com/noah-isme/intervention-planner-api/pkg/errors"
	"github.com/noah-isme/intervention-planner-api/pkg/export"
)

type cyclePreviewer interface {
	GenerateCycleSchedule(ctx context.Context, groupID string, req dto.CycleScheduleRequest) (*dto.CycleScheduleResult, error)
}

// Row status labels in exported previews.
const (
	exportReady    = "ready"
	exportAdvisory = "advisory"
	exportBlocked  = "blocked"
	exportSkipped  = "skipped"
)

var exportHeaders = []string{"Date", "Day", "Time", "Status", "Conflicts"}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders cycle previews as CSV, PDF or XLSX.
type ExportService struct {
	planner   cyclePreviewer
	renderers map[string]export.Renderer
	logger    *zap.Logger
	enabled   bool
}

// NewExportService constructs an ExportService with the built-in renderers.
func NewExportService(planner cyclePreviewer, logger *zap.Logger, enabled bool) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	renderers := map[string]export.Renderer{}
	for _, r := range []export.Renderer{export.NewCSVExporter(), export.NewPDFExporter(), export.NewXLSXExporter()} {
		renderers[r.Extension()] = r
	}
	return &ExportService{planner: planner, renderers: renderers, logger: logger, enabled: enabled}
}

// ExportCycle previews the cycle and renders it in the requested format.
func (s *ExportService) ExportCycle(ctx context.Context, groupID string, req dto.CycleScheduleRequest, format string) (*ExportFile, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "exports are disabled")
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	result, err := s.planner.GenerateCycleSchedule(ctx, groupID, req)
	if err != nil {
		return nil, err
	}
	data := cycleDataset(*result)
	data.Title = fmt.Sprintf("Intervention schedule: group %s, cycle %s", result.GroupID, result.CycleID)

	body, err := renderer.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Info("cycle exported", zap.String("group_id", groupID), zap.String("format", format), zap.Int("rows", len(data.Rows)))
	return &ExportFile{
		Filename:    fmt.Sprintf("schedule_%s_%s.%s", sanitizeFilename(result.GroupID), sanitizeFilename(result.CycleID), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

// cycleDataset lists previewed and skipped dates in date order.
func cycleDataset(result dto.CycleScheduleResult) export.Dataset {
	rows := make([]map[string]string, 0, len(result.Dates)+len(result.SkippedDates))
	for _, entry := range result.Dates {
		status := exportReady
		switch {
		case !scheduler.Materializable(entry):
			status = exportBlocked
		case len(entry.Conflicts) > 0:
			status = exportAdvisory
		}
		rows = append(rows, map[string]string{
			"Date":      entry.Date,
			"Day":       string(entry.Day),
			"Time":      entry.StartTime + "-" + entry.EndTime,
			"Status":    status,
			"Conflicts": describeConflicts(entry.Conflicts),
		})
	}
	for _, date := range result.SkippedDates {
		day := ""
		if parsed, err := scheduler.ParseDate(date); err == nil {
			day = string(models.WeekDayOf(parsed))
		}
		rows = append(rows, map[string]string{
			"Date":      date,
			"Day":       day,
			"Status":    exportSkipped,
			"Conflicts": "non-student day",
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i]["Date"] < rows[j]["Date"]
	})
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}

func describeConflicts(conflicts []models.Conflict) string {
	parts := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		parts = append(parts, c.Description)
	}
	return strings.Join(parts, "; ")
}

func sanitizeFilename(raw string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, raw)
}
