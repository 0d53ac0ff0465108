package models

import "time"

// Interventionist runs sessions; availability is the union of its blocks.
type Interventionist struct {
	ID           string           `db:"id" json:"id"`
	Name         string           `db:"name" json:"name"`
	Color        string           `db:"color" json:"color"`
	Availability WeeklyTimeBlocks `db:"availability" json:"availability"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}
