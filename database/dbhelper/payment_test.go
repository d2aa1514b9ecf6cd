package dbhelper

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ray-remotestate/homeplate/database"
	"github.com/ray-remotestate/homeplate/models"
)

func TestInsertPaymentRecordOncePerOrder(t *testing.T) {
	mock := newMockDB(t)
	record := models.PaymentRecord{
		OrderID:        uuid.New(),
		OwnerEmail:     "buyer@example.com",
		Amount:         610,
		TransactionRef: "tx_1",
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO payments")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow(uuid.NewString(), time.Now()))
	mock.ExpectCommit()

	err := database.Tx(func(tx *sql.Tx) error {
		created, err := InsertPaymentRecord(tx, &record)
		require.NoError(t, err)
		assert.True(t, created)
		return nil
	})
	require.NoError(t, err)

	// the conflict clause swallows a repeat insert, reported as not created
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO payments")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectCommit()

	err = database.Tx(func(tx *sql.Tx) error {
		created, err := InsertPaymentRecord(tx, &record)
		require.NoError(t, err)
		assert.False(t, created)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
