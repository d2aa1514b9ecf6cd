package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ray-remotestate/homeplate/middlewares"
	"github.com/ray-remotestate/homeplate/models"
)

// These cover the validation and role gates of checkout, which all fire
// before any storage access.
func TestCheckoutRejectsBeforePersistence(t *testing.T) {
	tests := []struct {
		name       string
		roles      []string
		body       string
		wantStatus int
	}{
		{
			name:       "chef cannot place orders",
			roles:      []string{"chef"},
			body:       `{"delivery_address": "12 Long Enough Street, Springfield"}`,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "admin cannot place orders",
			roles:      []string{"admin"},
			body:       `{"delivery_address": "12 Long Enough Street, Springfield"}`,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "malformed body",
			roles:      []string{"user"},
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "address too short",
			roles:      []string{"user"},
			body:       `{"delivery_address": "short"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "direct purchase with bad meal id",
			roles:      []string{"user"},
			body:       `{"delivery_address": "12 Long Enough Street, Springfield", "meal_id": "nope", "quantity": 1}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "direct purchase with zero quantity",
			roles:      []string{"user"},
			body:       `{"delivery_address": "12 Long Enough Street, Springfield", "meal_id": "` + uuid.NewString() + `", "quantity": 0}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(tt.body))
			req = req.WithContext(middlewares.WithClaims(req.Context(), &middlewares.Claims{
				UserID: uuid.New(),
				Email:  "someone@example.com",
				Roles:  tt.roles,
			}))

			w := httptest.NewRecorder()
			Checkout(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestCheckoutRequiresAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	Checkout(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateOrderStatusRejectsBadInput(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/api/orders/status/not-a-uuid", strings.NewReader(`{"event":"accept"}`))
	req = req.WithContext(middlewares.WithClaims(req.Context(), &middlewares.Claims{
		UserID: uuid.New(),
		Roles:  []string{"chef"},
	}))

	w := httptest.NewRecorder()
	UpdateOrderStatus(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetChefOrdersScope(t *testing.T) {
	chefID := uuid.New()

	t.Run("foreign chef forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/orders/chef/"+chefID.String(), nil)
		req = withChefVar(req, chefID)
		req = req.WithContext(middlewares.WithClaims(req.Context(), &middlewares.Claims{
			UserID: uuid.New(),
			Roles:  []string{"chef"},
		}))

		w := httptest.NewRecorder()
		GetChefOrders(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("customer forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/orders/chef/"+chefID.String(), nil)
		req = withChefVar(req, chefID)
		req = req.WithContext(middlewares.WithClaims(req.Context(), &middlewares.Claims{
			UserID: uuid.New(),
			Roles:  []string{"user"},
		}))

		w := httptest.NewRecorder()
		GetChefOrders(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func withChefVar(req *http.Request, chefID uuid.UUID) *http.Request {
	return mux.SetURLVars(req, map[string]string{"chefId": chefID.String()})
}

// Two chefs accepting the same pending order race on the status swap: the
// writer whose update still matches the stored status wins, the other gets a
// conflict and the order is untouched.
func TestUpdateOrderStatusConcurrentAccept(t *testing.T) {
	chefID := uuid.New()

	statusRequest := func(orderID uuid.UUID) *http.Request {
		req := httptest.NewRequest(http.MethodPatch, "/api/orders/status/"+orderID.String(),
			strings.NewReader(`{"event":"accept"}`))
		req = mux.SetURLVars(req, map[string]string{"orderId": orderID.String()})
		return req.WithContext(middlewares.WithClaims(req.Context(), &middlewares.Claims{
			UserID: chefID,
			Email:  "chef@example.com",
			Roles:  []string{"chef"},
		}))
	}

	t.Run("winner applies the swap", func(t *testing.T) {
		mock := mockDB(t)
		orderID := uuid.New()
		expectOrderLookup(mock, orderID, chefID, "pending", "pending")
		mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET order_status")).
			WillReturnResult(sqlmock.NewResult(0, 1))

		w := httptest.NewRecorder()
		UpdateOrderStatus(w, statusRequest(orderID))
		require.Equal(t, http.StatusOK, w.Code)

		var got models.Order
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, models.OrderAccepted, got.OrderStatus)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("loser gets a conflict", func(t *testing.T) {
		mock := mockDB(t)
		orderID := uuid.New()
		// this caller read pending, but another accept landed first
		expectOrderLookup(mock, orderID, chefID, "pending", "pending")
		mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET order_status")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		w := httptest.NewRecorder()
		UpdateOrderStatus(w, statusRequest(orderID))
		assert.Equal(t, http.StatusConflict, w.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
