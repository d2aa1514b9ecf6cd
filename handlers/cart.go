package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ray-remotestate/homeplate/database/dbhelper"
	"github.com/ray-remotestate/homeplate/middlewares"
	"github.com/ray-remotestate/homeplate/models"
)

func GetCart(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	items, err := dbhelper.ListCartItems(claims.Email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to query cart")
		return
	}
	if items == nil {
		items = []models.CartItem{}
	}
	respondJSON(w, http.StatusOK, items)
}

func AddToCart(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	type request struct {
		MealID string `json:"meal_id"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	mealID, err := uuid.Parse(req.MealID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid meal id")
		return
	}

	meal, err := dbhelper.GetMealByID(mealID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "meal not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to query meal")
		return
	}
	if !meal.IsAvailable {
		respondError(w, http.StatusNotFound, "meal is not available")
		return
	}

	// An add is always one unit; repeating it increments. Explicit
	// quantities go through the quantity endpoint.
	item, err := dbhelper.AddCartItem(claims.Email, meal, 1)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to add item to cart")
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

// UpdateCartItemQuantity sets an item's quantity; anything below one removes
// the item, since quantity zero is not a valid resting state.
func UpdateCartItemQuantity(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	itemID, err := strconv.ParseInt(mux.Vars(r)["itemId"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid cart item id")
		return
	}

	type request struct {
		Quantity int `json:"quantity"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if req.Quantity < 1 {
		if err := dbhelper.RemoveCartItem(claims.Email, itemID); err != nil {
			if errors.Is(err, dbhelper.ErrNotFound) {
				respondError(w, http.StatusNotFound, "cart item not found")
				return
			}
			respondError(w, http.StatusInternalServerError, "failed to remove cart item")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"message": "item removed"})
		return
	}

	item, err := dbhelper.SetCartItemQuantity(claims.Email, itemID, req.Quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "cart item not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to update cart item")
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func DeleteCartItem(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	itemID, err := strconv.ParseInt(mux.Vars(r)["itemId"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid cart item id")
		return
	}

	if err := dbhelper.RemoveCartItem(claims.Email, itemID); err != nil {
		if errors.Is(err, dbhelper.ErrNotFound) {
			respondError(w, http.StatusNotFound, "cart item not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to remove cart item")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "item removed"})
}

func ClearCart(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := dbhelper.ClearCart(claims.Email); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}
