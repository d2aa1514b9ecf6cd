package models

import (
	"time"

	"github.com/google/uuid"
)

// Meal prices are whole currency units; all money in the service is int64.
type Meal struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	ChefID      uuid.UUID  `db:"chef_id" json:"chef_id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	Price       int64      `db:"price" json:"price"`
	ImageURL    string     `db:"image_url" json:"image_url"`
	IsAvailable bool       `db:"is_available" json:"is_available"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	ArchivedAt  *time.Time `db:"archived_at" json:"archived_at,omitempty"`
}
