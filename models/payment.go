package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentIntent is the gateway-issued handle for an authorized charge
// attempt. At most one intent exists per order.
type PaymentIntent struct {
	OrderID   uuid.UUID `db:"order_id" json:"order_id"`
	IntentRef string    `db:"intent_ref" json:"intent_ref"`
	Amount    int64     `db:"amount" json:"amount"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PaymentRecord is written exactly once per settled order and never updated.
// The unique index on order_id is what makes confirmation retry-safe.
type PaymentRecord struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrderID        uuid.UUID `db:"order_id" json:"order_id"`
	OwnerEmail     string    `db:"owner_email" json:"owner_email"`
	Amount         int64     `db:"amount" json:"amount"`
	TransactionRef string    `db:"transaction_ref" json:"transaction_ref"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
