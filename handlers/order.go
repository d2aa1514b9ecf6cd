package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/homeplate/database"
	"github.com/ray-remotestate/homeplate/database/dbhelper"
	"github.com/ray-remotestate/homeplate/middlewares"
	"github.com/ray-remotestate/homeplate/models"
)

const minAddressLength = 10

// Checkout turns either the caller's cart or a direct (meal, quantity)
// purchase into one immutable order. Prices and chef ids are re-read from
// the catalog here, never taken from the cart snapshot, and the order commit
// is the durable point: the cart is cleared only afterwards, best effort.
func Checkout(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	principal := claims.Principal()
	if principal.Is(models.RoleChef) || principal.Is(models.RoleAdmin) {
		respondError(w, http.StatusForbidden, "chefs and admins cannot place orders")
		return
	}

	type request struct {
		DeliveryAddress string `json:"delivery_address"`
		MealID          string `json:"meal_id"`
		Quantity        int    `json:"quantity"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	address := strings.TrimSpace(req.DeliveryAddress)
	if len(address) < minAddressLength {
		respondError(w, http.StatusBadRequest, "delivery address is too short")
		return
	}

	var items []models.OrderItem
	fromCart := req.MealID == ""

	if fromCart {
		cartItems, err := dbhelper.ListCartItems(claims.Email)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to read cart")
			return
		}
		if len(cartItems) == 0 {
			respondError(w, http.StatusBadRequest, "cart is empty")
			return
		}
		for _, ci := range cartItems {
			item, err := resolveLine(ci.MealID, ci.Quantity)
			if err != nil {
				respondResolveError(w, err)
				return
			}
			items = append(items, item)
		}
	} else {
		mealID, err := uuid.Parse(req.MealID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid meal id")
			return
		}
		if req.Quantity < 1 {
			respondError(w, http.StatusBadRequest, "quantity must be at least 1")
			return
		}
		item, err := resolveLine(mealID, req.Quantity)
		if err != nil {
			respondResolveError(w, err)
			return
		}
		items = append(items, item)
	}

	subtotal, fee, total := models.ComputeTotals(items)
	order := models.Order{
		OwnerEmail:      strings.ToLower(claims.Email),
		Items:           items,
		DeliveryAddress: address,
		Subtotal:        subtotal,
		DeliveryFee:     fee,
		TotalAmount:     total,
		OrderStatus:     models.OrderPending,
		PaymentStatus:   models.PaymentPending,
	}

	txErr := database.Tx(func(tx *sql.Tx) error {
		return dbhelper.CreateOrder(tx, &order)
	})
	if txErr != nil {
		logrus.WithError(txErr).Error("failed to persist order")
		respondError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	// The order exists; losing the cart cleanup only leaves a stale cart.
	if fromCart {
		if err := dbhelper.ClearCart(claims.Email); err != nil {
			logrus.WithError(err).Warn("order created but cart cleanup failed")
		}
	}

	respondJSON(w, http.StatusCreated, order)
}

var errMealUnavailable = errors.New("meal unavailable")

// resolveLine freezes the authoritative unit price and chef for one line.
func resolveLine(mealID uuid.UUID, quantity int) (models.OrderItem, error) {
	meal, err := dbhelper.GetMealByID(mealID)
	if err != nil {
		return models.OrderItem{}, err
	}
	if !meal.IsAvailable {
		return models.OrderItem{}, errMealUnavailable
	}
	return models.OrderItem{
		MealID:    meal.ID,
		MealName:  meal.Name,
		UnitPrice: meal.Price,
		Quantity:  quantity,
		ChefID:    meal.ChefID,
	}, nil
}

func respondResolveError(w http.ResponseWriter, err error) {
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, errMealUnavailable) {
		respondError(w, http.StatusNotFound, "meal no longer available")
		return
	}
	respondError(w, http.StatusInternalServerError, "failed to resolve meal")
}

// UpdateOrderStatus drives the order lifecycle. The permission check runs
// before the transition check, and the write itself is a compare-and-swap,
// so a superseded caller always gets a conflict and the order is untouched.
func UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, err := uuid.Parse(mux.Vars(r)["orderId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	type request struct {
		Event string `json:"event"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}
	event := models.Event(req.Event)

	order, err := dbhelper.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "order not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to query order")
		return
	}

	if err := models.Authorize(claims.Principal(), order, event); err != nil {
		if errors.Is(err, models.ErrUnknownEvent) {
			respondError(w, http.StatusBadRequest, "unknown event")
			return
		}
		respondError(w, http.StatusForbidden, "not allowed to update this order")
		return
	}

	next, err := models.NextStatus(order.OrderStatus, event)
	if err != nil {
		if errors.Is(err, models.ErrUnknownEvent) {
			respondError(w, http.StatusBadRequest, "unknown event")
			return
		}
		respondError(w, http.StatusConflict, "order cannot move from its current status")
		return
	}

	if err := dbhelper.UpdateOrderStatus(order.ID, order.OrderStatus, next); err != nil {
		if errors.Is(err, dbhelper.ErrStaleStatus) {
			respondError(w, http.StatusConflict, "order was updated by someone else, refresh and retry")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to update order")
		return
	}

	order.OrderStatus = next
	respondJSON(w, http.StatusOK, order)
}

func GetMyOrders(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := dbhelper.ListOrdersByOwner(claims.Email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to query orders")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

// GetChefOrders lists orders containing the chef's meals, with line items
// narrowed to that chef. A chef can only read their own queue; admins can
// read anyone's.
func GetChefOrders(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	chefID, err := uuid.Parse(mux.Vars(r)["chefId"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid chef id")
		return
	}

	principal := claims.Principal()
	if !principal.Is(models.RoleAdmin) && !(principal.Is(models.RoleChef) && claims.UserID == chefID) {
		respondError(w, http.StatusForbidden, "not allowed to view these orders")
		return
	}

	orders, err := dbhelper.ListOrdersByChef(chefID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to query orders")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := dbhelper.ListAllOrders()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to query orders")
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}
