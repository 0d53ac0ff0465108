package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/intervention-planner-api/internal/models"
)

// InterventionistRepository reads interventionists and their availability.
type InterventionistRepository struct {
	db *sqlx.DB
}

// NewInterventionistRepository constructs the repository.
func NewInterventionistRepository(db *sqlx.DB) *InterventionistRepository {
	return &InterventionistRepository{db: db}
}

// FindByID returns an interventionist or sql.ErrNoRows.
func (r *InterventionistRepository) FindByID(ctx context.Context, id string) (*models.Interventionist, error) {
	const query = `SELECT id, name, color, availability, created_at, updated_at FROM interventionists WHERE id = $1`
	var person models.Interventionist
	if err := r.db.GetContext(ctx, &person, query, id); err != nil {
		return nil, err
	}
	return &person, nil
}

// FindForGroup returns the group's assigned interventionist, or sql.ErrNoRows when none is assigned.
func (r *InterventionistRepository) FindForGroup(ctx context.Context, groupID string) (*models.Interventionist, error) {
	const query = `SELECT i.id, i.name, i.color, i.availability, i.created_at, i.updated_at
		FROM interventionists i
		JOIN intervention_groups g ON g.interventionist_id = i.id
		WHERE g.id = $1`
	var person models.Interventionist
	if err := r.db.GetContext(ctx, &person, query, groupID); err != nil {
		return nil, err
	}
	return &person, nil
}

// UpdateAvailability replaces the weekly availability blocks.
func (r *InterventionistRepository) UpdateAvailability(ctx context.Context, id string, blocks models.WeeklyTimeBlocks) error {
	const query = `UPDATE interventionists SET availability = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, blocks, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update availability: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check availability update rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
