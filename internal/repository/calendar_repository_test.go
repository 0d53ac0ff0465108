package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intervention-planner-api/internal/models"
)

var calendarRowColumns = []string{"id", "date", "end_date", "type", "title", "affects_grades", "modified_start_time", "modified_end_time", "created_at", "updated_at"}

func TestCalendarRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	now := time.Now()
	start := time.Date(2024, 12, 23, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM school_calendar_events ORDER BY date, title")).
		WillReturnRows(sqlmock.NewRows(calendarRowColumns).
			AddRow("e1", start, end, "break", "Winter Break", nil, nil, nil, now, now).
			AddRow("e2", start, nil, "testing_day", "Grade 3 testing", "{3,4}", nil, nil, now, now))

	events, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.NotNil(t, events[0].EndDate)
	assert.Nil(t, events[0].AffectsGrades)
	assert.Equal(t, pq.Int64Array{3, 4}, events[1].AffectsGrades)
	assert.True(t, events[1].Affects(3))
	assert.False(t, events[1].Affects(5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarRepositoryListBetween(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE date <= $2 AND COALESCE(end_date, date) >= $1")).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows(calendarRowColumns))

	events, err := repo.ListBetween(context.Background(), from, to)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarRepositoryCreateBatchRollsBack(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	day := time.Date(2024, 11, 28, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO school_calendar_events").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO school_calendar_events").WillReturnError(errors.New("duplicate"))
	mock.ExpectRollback()

	err := repo.CreateBatch(context.Background(), []models.SchoolCalendarEvent{
		{Date: day, Type: models.DayHoliday, Title: "Thanksgiving"},
		{Date: day.AddDate(0, 0, 1), Type: models.DayBreak, Title: "Day after"},
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarRepositoryCreateBatchCommits(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO school_calendar_events").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	events := []models.SchoolCalendarEvent{{Date: time.Date(2024, 11, 28, 0, 0, 0, 0, time.UTC), Type: models.DayHoliday, Title: "Thanksgiving"}}
	require.NoError(t, repo.CreateBatch(context.Background(), events))
	assert.NotEmpty(t, events[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
