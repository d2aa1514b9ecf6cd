package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/homeplate/cache"
	"github.com/ray-remotestate/homeplate/database/dbhelper"
	"github.com/ray-remotestate/homeplate/middlewares"
	"github.com/ray-remotestate/homeplate/models"
)

// ListMeals serves the catalog, read through the cache. Checkout never uses
// this path; it reads the database directly for the price snapshot.
func ListMeals(w http.ResponseWriter, r *http.Request) {
	var meals []models.Meal
	hit, err := cache.GetJSON(r.Context(), cache.MealsKey, &meals)
	if err != nil {
		logrus.WithError(err).Warn("meal cache read failed")
	}
	if hit {
		respondJSON(w, http.StatusOK, meals)
		return
	}

	meals, err = dbhelper.ListMeals()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to query meals")
		return
	}

	if err := cache.SetJSON(r.Context(), cache.MealsKey, meals, cache.MealsTTL); err != nil {
		logrus.WithError(err).Warn("meal cache write failed")
	}
	respondJSON(w, http.StatusOK, meals)
}

func GetMeal(w http.ResponseWriter, r *http.Request) {
	mealID, err := uuid.Parse(mux.Vars(r)["id"])
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
	respondJSON(w, http.StatusOK, meal)
}

func CreateMeal(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	type request struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Price       int64  `json:"price"`
		ImageURL    string `json:"image_url"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Price <= 0 {
		respondError(w, http.StatusBadRequest, "price must be positive")
		return
	}

	meal := models.Meal{
		ChefID:      claims.UserID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		IsAvailable: true,
	}
	if err := dbhelper.CreateMeal(&meal); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create meal")
		return
	}

	cache.Invalidate(r.Context(), cache.MealsKey)
	respondJSON(w, http.StatusCreated, meal)
}

func UpdateMeal(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	mealID, err := uuid.Parse(mux.Vars(r)["id"])
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

	principal := claims.Principal()
	if !principal.Is(models.RoleAdmin) && meal.ChefID != claims.UserID {
		respondError(w, http.StatusForbidden, "not your meal")
		return
	}

	type request struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Price       *int64  `json:"price"`
		ImageURL    *string `json:"image_url"`
		IsAvailable *bool   `json:"is_available"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if req.Name != nil {
		meal.Name = *req.Name
	}
	if req.Description != nil {
		meal.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			respondError(w, http.StatusBadRequest, "price must be positive")
			return
		}
		meal.Price = *req.Price
	}
	if req.ImageURL != nil {
		meal.ImageURL = *req.ImageURL
	}
	if req.IsAvailable != nil {
		meal.IsAvailable = *req.IsAvailable
	}

	if err := dbhelper.UpdateMeal(meal); err != nil {
		if errors.Is(err, dbhelper.ErrNotFound) {
			respondError(w, http.StatusNotFound, "meal not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to update meal")
		return
	}

	cache.Invalidate(r.Context(), cache.MealsKey)
	respondJSON(w, http.StatusOK, meal)
}
