package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/intervention-planner-api/internal/models"
)

// GroupRepository reads intervention groups.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository constructs the repository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// FindByID returns a group or sql.ErrNoRows.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.InterventionGroup, error) {
	const query = `SELECT id, name, grade, interventionist_id, session_duration, created_at, updated_at FROM intervention_groups WHERE id = $1`
	var group models.InterventionGroup
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}
