package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/homeplate/database"
	"github.com/ray-remotestate/homeplate/database/dbhelper"
	"github.com/ray-remotestate/homeplate/middlewares"
	"github.com/ray-remotestate/homeplate/models"
	"github.com/ray-remotestate/homeplate/payments"
)

const gatewayTimeout = 10 * time.Second

// CreatePaymentIntent starts payment for an order. The charged amount is
// always the stored order total; the client never supplies an amount. A
// second call for the same order returns the existing intent.
func CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	type request struct {
		OrderID string `json:"order_id"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := loadOwnedOrder(orderID, claims)
	if err != nil {
		respondOrderLookup(w, err)
		return
	}

	intent, err := dbhelper.GetPaymentIntent(order.ID)
	if err == nil {
		respondJSON(w, http.StatusOK, map[string]string{"intent_ref": intent.IntentRef})
		return
	}
	if !errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusInternalServerError, "failed to query payment intent")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), gatewayTimeout)
	defer cancel()

	intentRef, err := payments.Default.CreateIntent(ctx, order.ID, order.TotalAmount)
	if err != nil {
		logrus.WithError(err).Error("gateway create-intent failed")
		respondError(w, http.StatusBadGateway, "payment gateway unavailable")
		return
	}

	intent, err = dbhelper.SavePaymentIntent(models.PaymentIntent{
		OrderID:   order.ID,
		IntentRef: intentRef,
		Amount:    order.TotalAmount,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to store payment intent")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"intent_ref": intent.IntentRef})
}

// ConfirmPayment records a settled charge. It is safe to retry: the payments
// table takes at most one row per order, and every call, duplicate or not,
// re-applies the pending-to-paid swap so an interrupted earlier attempt is
// repaired by the retry.
func ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	type request struct {
		OrderID        string `json:"order_id"`
		TransactionRef string `json:"transaction_ref"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.TransactionRef == "" {
		respondError(w, http.StatusBadRequest, "transaction reference is required")
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := loadOwnedOrder(orderID, claims)
	if err != nil {
		respondOrderLookup(w, err)
		return
	}

	intent, err := dbhelper.GetPaymentIntent(order.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusBadGateway, "payment could not be verified")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to query payment intent")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), gatewayTimeout)
	defer cancel()

	charge, err := payments.Default.VerifyTransaction(ctx, req.TransactionRef)
	if err != nil {
		logrus.WithError(err).Error("gateway verification failed")
		respondError(w, http.StatusBadGateway, "payment could not be verified")
		return
	}
	// The charge must be the one authorized for this order. A settled charge
	// of the right size against some other intent does not settle this order.
	if charge.IntentRef != intent.IntentRef || charge.Amount != order.TotalAmount {
		logrus.WithField("order_id", order.ID).Error("charge does not match the order's intent")
		respondError(w, http.StatusBadGateway, "payment could not be verified")
		return
	}

	record := models.PaymentRecord{
		OrderID:        order.ID,
		OwnerEmail:     order.OwnerEmail,
		Amount:         charge.Amount,
		TransactionRef: req.TransactionRef,
	}
	var created bool
	txErr := database.Tx(func(tx *sql.Tx) error {
		var err error
		created, err = dbhelper.InsertPaymentRecord(tx, &record)
		if err != nil {
			return err
		}
		// Applied on duplicates too: a crash between an earlier insert and
		// its status swap leaves payment_status pending, and the retry is
		// what heals it.
		err = dbhelper.SetPaymentStatus(tx, order.ID, models.PaymentPending, models.PaymentPaid)
		if err != nil && !errors.Is(err, dbhelper.ErrStaleStatus) {
			return err
		}
		return nil
	})
	if txErr != nil {
		respondError(w, http.StatusInternalServerError, "failed to record payment")
		return
	}
	// The swap either just applied or had applied before; payment_status
	// cannot still read pending past this point.
	order.PaymentStatus = models.PaymentPaid

	// Money was captured after the order was already cancelled. The order
	// stays cancelled; the capture is flagged for manual refund.
	if order.OrderStatus == models.OrderCancelled {
		logrus.WithField("order_id", order.ID).Warn("payment captured for a cancelled order, manual reconciliation required")
	}

	if !created {
		respondJSON(w, http.StatusConflict, map[string]interface{}{
			"message": "payment already confirmed",
			"order":   order,
		})
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func loadOwnedOrder(orderID uuid.UUID, claims *middlewares.Claims) (*models.Order, error) {
	order, err := dbhelper.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}
	// Foreign orders read as not-found so order ids are not probeable.
	if !claims.Principal().Is(models.RoleAdmin) && !strings.EqualFold(order.OwnerEmail, claims.Email) {
		return nil, sql.ErrNoRows
	}
	return order, nil
}

func respondOrderLookup(w http.ResponseWriter, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}
	respondError(w, http.StatusInternalServerError, "failed to query order")
}
