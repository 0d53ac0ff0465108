package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/intervention-planner-api/internal/models"
)

const gradeConstraintColumns = `id, grade, label, type, schedule, created_at, updated_at`

// GradeConstraintRepository persists grade-level unavailability windows.
type GradeConstraintRepository struct {
	db *sqlx.DB
}

// NewGradeConstraintRepository constructs the repository.
func NewGradeConstraintRepository(db *sqlx.DB) *GradeConstraintRepository {
	return &GradeConstraintRepository{db: db}
}

// ListByGrade returns the constraints for one grade.
func (r *GradeConstraintRepository) ListByGrade(ctx context.Context, grade int) ([]models.GradeLevelConstraint, error) {
	query := `SELECT ` + gradeConstraintColumns + ` FROM grade_level_constraints WHERE grade = $1 ORDER BY label`
	var items []models.GradeLevelConstraint
	if err := r.db.SelectContext(ctx, &items, query, grade); err != nil {
		return nil, fmt.Errorf("list grade constraints: %w", err)
	}
	return items, nil
}

// List returns every constraint ordered by grade.
func (r *GradeConstraintRepository) List(ctx context.Context) ([]models.GradeLevelConstraint, error) {
	query := `SELECT ` + gradeConstraintColumns + ` FROM grade_level_constraints ORDER BY grade, label`
	var items []models.GradeLevelConstraint
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list grade constraints: %w", err)
	}
	return items, nil
}

// Create inserts a constraint.
func (r *GradeConstraintRepository) Create(ctx context.Context, item *models.GradeLevelConstraint) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	const query = `INSERT INTO grade_level_constraints (id, grade, label, type, schedule, created_at, updated_at)
		VALUES (:id, :grade, :label, :type, :schedule, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create grade constraint: %w", err)
	}
	return nil
}

// Delete removes a constraint, returning sql.ErrNoRows when absent.
func (r *GradeConstraintRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM grade_level_constraints WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete grade constraint: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check grade constraint delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
