package dbhelper

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/ray-remotestate/homeplate/database"
	"github.com/ray-remotestate/homeplate/models"
)

func GetPaymentIntent(orderID uuid.UUID) (models.PaymentIntent, error) {
	var intent models.PaymentIntent
	err := database.HomePlate.QueryRow(`
		SELECT order_id, intent_ref, amount, created_at
		FROM payment_intents
		WHERE order_id = $1`, orderID).
		Scan(&intent.OrderID, &intent.IntentRef, &intent.Amount, &intent.CreatedAt)
	return intent, err
}

// SavePaymentIntent stores a gateway intent for the order. On a concurrent
// duplicate the existing row wins and is returned, keeping create-intent
// idempotent by order id.
func SavePaymentIntent(intent models.PaymentIntent) (models.PaymentIntent, error) {
	_, err := database.HomePlate.Exec(`
		INSERT INTO payment_intents (order_id, intent_ref, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id) DO NOTHING`,
		intent.OrderID, intent.IntentRef, intent.Amount)
	if err != nil {
		return models.PaymentIntent{}, err
	}
	return GetPaymentIntent(intent.OrderID)
}

// InsertPaymentRecord writes the at-most-one payment row for the order.
// created is false when a record already existed, which callers treat as a
// benign duplicate confirmation. It runs inside the caller's transaction so
// the insert and the payment-status swap commit or roll back together.
func InsertPaymentRecord(tx *sql.Tx, record *models.PaymentRecord) (created bool, err error) {
	err = tx.QueryRow(`
		INSERT INTO payments (order_id, owner_email, amount, transaction_ref)
		VALUES ($1, LOWER($2), $3, $4)
		ON CONFLICT (order_id) DO NOTHING
		RETURNING id, created_at`,
		record.OrderID, record.OwnerEmail, record.Amount, record.TransactionRef).
		Scan(&record.ID, &record.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func GetPaymentByOrderID(orderID uuid.UUID) (models.PaymentRecord, error) {
	var record models.PaymentRecord
	err := database.HomePlate.QueryRow(`
		SELECT id, order_id, owner_email, amount, transaction_ref, created_at
		FROM payments
		WHERE order_id = $1`, orderID).
		Scan(&record.ID, &record.OrderID, &record.OwnerEmail, &record.Amount,
			&record.TransactionRef, &record.CreatedAt)
	return record, err
}
