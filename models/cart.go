package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one (meal, quantity) selection in a customer's cart. UnitPrice
// and ChefID are snapshots taken when the item was added; checkout re-reads
// the catalog and never trusts these for the order itself.
type CartItem struct {
	ID         int64     `db:"id" json:"id"`
	OwnerEmail string    `db:"owner_email" json:"owner_email"`
	MealID     uuid.UUID `db:"meal_id" json:"meal_id"`
	MealName   string    `db:"meal_name" json:"meal_name"`
	UnitPrice  int64     `db:"unit_price" json:"unit_price"`
	Quantity   int       `db:"quantity" json:"quantity"`
	ChefID     uuid.UUID `db:"chef_id" json:"chef_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
