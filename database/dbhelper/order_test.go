package dbhelper

import (
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ray-remotestate/homeplate/database"
	"github.com/ray-remotestate/homeplate/models"
)

func newMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	database.HomePlate = db
	t.Cleanup(func() { db.Close() })
	return mock
}

func TestUpdateOrderStatusFirstWriterWins(t *testing.T) {
	mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET order_status")).
		WithArgs(models.OrderAccepted, id, models.OrderPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, UpdateOrderStatus(id, models.OrderPending, models.OrderAccepted))

	// the same swap again no longer matches the stored status
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET order_status")).
		WithArgs(models.OrderAccepted, id, models.OrderPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, UpdateOrderStatus(id, models.OrderPending, models.OrderAccepted), ErrStaleStatus)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetPaymentStatusStale(t *testing.T) {
	mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET payment_status")).
		WithArgs(models.PaymentPaid, id, models.PaymentPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := database.Tx(func(tx *sql.Tx) error {
		return SetPaymentStatus(tx, id, models.PaymentPending, models.PaymentPaid)
	})
	assert.ErrorIs(t, err, ErrStaleStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}
