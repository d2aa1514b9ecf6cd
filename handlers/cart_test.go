package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ray-remotestate/homeplate/middlewares"
	"github.com/ray-remotestate/homeplate/models"
)

func TestAddToCartFirstAddIsOneUnit(t *testing.T) {
	mock := mockDB(t)
	mealID := uuid.New()
	chefID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, chef_id, name, description, price")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "chef_id", "name", "description",
			"price", "image_url", "is_available", "created_at"}).
			AddRow(mealID.String(), chefID.String(), "Paneer Bowl", "", 250, "", true, time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO cart_items")).
		WithArgs("someone@example.com", mealID, "Paneer Bowl", int64(250), 1, chefID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_email", "meal_id", "meal_name",
			"unit_price", "quantity", "chef_id", "created_at", "updated_at"}).
			AddRow(1, "someone@example.com", mealID.String(), "Paneer Bowl", 250, 1,
				chefID.String(), time.Now(), time.Now()))

	// a quantity in the body is ignored, the insert is always a single unit
	body := `{"meal_id":"` + mealID.String() + `","quantity":5}`
	req := httptest.NewRequest(http.MethodPost, "/api/cart", strings.NewReader(body))
	req = req.WithContext(middlewares.WithClaims(req.Context(), &middlewares.Claims{
		UserID: uuid.New(),
		Email:  "someone@example.com",
		Roles:  []string{"user"},
	}))

	w := httptest.NewRecorder()
	AddToCart(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var item models.CartItem
	require.NoError(t, json.NewDecoder(w.Body).Decode(&item))
	assert.Equal(t, 1, item.Quantity)
	require.NoError(t, mock.ExpectationsWereMet())
}
