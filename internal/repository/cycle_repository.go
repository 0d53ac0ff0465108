package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/intervention-planner-api/internal/models"
)

// CycleRepository reads intervention cycles.
type CycleRepository struct {
	db *sqlx.DB
}

// NewCycleRepository constructs the repository.
func NewCycleRepository(db *sqlx.DB) *CycleRepository {
	return &CycleRepository{db: db}
}

// FindByID returns a cycle or sql.ErrNoRows.
func (r *CycleRepository) FindByID(ctx context.Context, id string) (*models.InterventionCycle, error) {
	const query = `SELECT id, name, start_date, end_date, status, created_at, updated_at FROM intervention_cycles WHERE id = $1`
	var cycle models.InterventionCycle
	if err := r.db.GetContext(ctx, &cycle, query, id); err != nil {
		return nil, err
	}
	return &cycle, nil
}
