package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIntent(t *testing.T) {
	orderID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/intents", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req intentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, orderID.String(), req.OrderID)
		assert.Equal(t, int64(610), req.Amount)

		json.NewEncoder(w).Encode(intentResponse{IntentRef: "pi_123"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	ref, err := client.CreateIntent(context.Background(), orderID, 610)
	require.NoError(t, err)
	assert.Equal(t, "pi_123", ref)
}

func TestCreateIntentDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	_, err := client.CreateIntent(context.Background(), uuid.New(), 100)
	assert.ErrorIs(t, err, ErrDeclined)
}

func TestCreateIntentEmptyReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(intentResponse{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	_, err := client.CreateIntent(context.Background(), uuid.New(), 100)
	assert.Error(t, err)
}

func TestVerifyTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/charges/tx_42", r.URL.Path)
		json.NewEncoder(w).Encode(Charge{TransactionRef: "tx_42", IntentRef: "pi_123", Amount: 610, Status: "succeeded"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	charge, err := client.VerifyTransaction(context.Background(), "tx_42")
	require.NoError(t, err)
	assert.Equal(t, int64(610), charge.Amount)
	assert.Equal(t, "pi_123", charge.IntentRef)
}

func TestVerifyTransactionUnknownRef(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	_, err := client.VerifyTransaction(context.Background(), "tx_missing")
	assert.ErrorIs(t, err, ErrUnverified)
}

func TestVerifyTransactionNotSettled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Charge{TransactionRef: "tx_42", Amount: 610, Status: "pending"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	_, err := client.VerifyTransaction(context.Background(), "tx_42")
	assert.ErrorIs(t, err, ErrUnverified)
}
