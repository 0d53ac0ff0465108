package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intervention-planner-api/internal/models"
)

func TestSessionRepositoryListByGroup(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	date := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "group_id", "date", "start_time", "status", "curriculum_position", "duration_minutes", "notes", "created_at", "updated_at"}).
		AddRow("s1", "g1", date, "09:00", "planned", 1, nil, nil, now, now).
		AddRow("s2", "g1", date, "13:00", "cancelled", nil, 45, "sick day", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE group_id = $1 ORDER BY date, start_time")).
		WithArgs("g1").
		WillReturnRows(rows)

	sessions, err := repo.ListByGroup(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "09:00", sessions[0].Time)
	require.NotNil(t, sessions[0].CurriculumPosition)
	assert.Equal(t, 1, *sessions[0].CurriculumPosition)
	assert.Equal(t, models.SessionCancelled, sessions[1].Status)
	assert.Equal(t, 45, sessions[1].Duration(30))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	position := 4
	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(sqlmock.AnyArg(), "g1", sqlmock.AnyArg(), "09:00", "planned", 4, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	session := &models.Session{GroupID: "g1", Date: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), Time: "09:00", CurriculumPosition: &position}
	require.NoError(t, repo.Create(context.Background(), session))
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, models.SessionPlanned, session.Status)
	assert.False(t, session.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryCreateSlotTaken(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec("INSERT INTO sessions").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	session := &models.Session{GroupID: "g1", Date: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), Time: "09:00"}
	err := repo.Create(context.Background(), session)
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryMaxCurriculumPosition(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(curriculum_position), 0) FROM sessions")).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(7))

	max, err := repo.MaxCurriculumPosition(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, 7, max)
	assert.NoError(t, mock.ExpectationsWereMet())
}
