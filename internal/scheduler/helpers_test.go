package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intervention-planner-api/internal/models"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func datePtr(t *testing.T, s string) *time.Time {
	d := mustDate(t, s)
	return &d
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func block(start, end string, days ...models.WeekDay) models.WeeklyTimeBlock {
	return models.WeeklyTimeBlock{Days: days, StartTime: start, EndTime: end}
}

// scenarioFixture is a grade-3 group whose interventionist works Mon/Wed/Fri
// mornings, with a grade-wide lunch and one Monday session already booked.
func scenarioFixture(t *testing.T) (models.InterventionGroup, Context) {
	group := models.InterventionGroup{ID: "g1", Name: "Reading A", Grade: 3, InterventionistID: strPtr("i1")}
	ctx := Context{
		Sessions: []models.Session{
			{ID: "s1", GroupID: "g1", Date: mustDate(t, "2024-01-08"), Time: "09:00", Status: models.SessionPlanned},
		},
		Interventionist: &models.Interventionist{
			ID:   "i1",
			Name: "Ms. Rivera",
			Availability: models.WeeklyTimeBlocks{
				block("08:00", "12:00", models.Monday, models.Wednesday, models.Friday),
			},
		},
		GradeConstraints: []models.GradeLevelConstraint{
			{
				ID:       "c1",
				Grade:    3,
				Label:    "Lunch",
				Type:     models.ConstraintLunch,
				Schedule: block("11:30", "12:00", models.SchoolDays...),
			},
		},
		Events:          EventsByDate{},
		DefaultDuration: 30,
	}
	return group, ctx
}

func conflictTypes(conflicts []models.Conflict) []models.ConflictType {
	types := make([]models.ConflictType, 0, len(conflicts))
	for _, c := range conflicts {
		types = append(types, c.Type)
	}
	return types
}
