package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intervention-planner-api/internal/models"
)

func TestInterventionistRepositoryFindForGroup(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewInterventionistRepository(db)

	now := time.Now()
	availability := `[{"days":["monday","wednesday"],"start_time":"08:00","end_time":"12:00"}]`
	mock.ExpectQuery(regexp.QuoteMeta("JOIN intervention_groups g ON g.interventionist_id = i.id")).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "color", "availability", "created_at", "updated_at"}).
			AddRow("i1", "Ms. Rivera", "#ff0000", []byte(availability), now, now))

	person, err := repo.FindForGroup(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, person.Availability, 1)
	assert.Equal(t, []models.WeekDay{models.Monday, models.Wednesday}, person.Availability[0].Days)
	assert.Equal(t, "12:00", person.Availability[0].EndTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInterventionistRepositoryFindForGroupNone(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewInterventionistRepository(db)

	mock.ExpectQuery("FROM interventionists i").WithArgs("g1").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindForGroup(context.Background(), "g1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestInterventionistRepositoryUpdateAvailability(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewInterventionistRepository(db)

	blocks := models.WeeklyTimeBlocks{{Days: []models.WeekDay{models.Friday}, StartTime: "09:00", EndTime: "11:00"}}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE interventionists SET availability = $1")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "i1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateAvailability(context.Background(), "i1", blocks))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE interventionists SET availability = $1")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateAvailability(context.Background(), "missing", blocks), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
