package dbhelper

import (
	"github.com/google/uuid"

	"github.com/ray-remotestate/homeplate/database"
	"github.com/ray-remotestate/homeplate/models"
)

func CreateMeal(meal *models.Meal) error {
	return database.HomePlate.QueryRow(`
		INSERT INTO meals (chef_id, name, description, price, image_url, is_available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		meal.ChefID, meal.Name, meal.Description, meal.Price, meal.ImageURL, meal.IsAvailable).
		Scan(&meal.ID, &meal.CreatedAt)
}

func UpdateMeal(meal models.Meal) error {
	result, err := database.HomePlate.Exec(`
		UPDATE meals
		SET name = $1, description = $2, price = $3, image_url = $4, is_available = $5
		WHERE id = $6 AND archived_at IS NULL`,
		meal.Name, meal.Description, meal.Price, meal.ImageURL, meal.IsAvailable, meal.ID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetMealByID is the authoritative catalog read used by checkout; it always
// hits the database, never the cache.
func GetMealByID(id uuid.UUID) (models.Meal, error) {
	var meal models.Meal
	err := database.HomePlate.QueryRow(`
		SELECT id, chef_id, name, description, price, image_url, is_available, created_at
		FROM meals
		WHERE id = $1 AND archived_at IS NULL`, id).
		Scan(&meal.ID, &meal.ChefID, &meal.Name, &meal.Description, &meal.Price,
			&meal.ImageURL, &meal.IsAvailable, &meal.CreatedAt)
	return meal, err
}

func ListMeals() ([]models.Meal, error) {
	rows, err := database.HomePlate.Query(`
		SELECT id, chef_id, name, description, price, image_url, is_available, created_at
		FROM meals
		WHERE archived_at IS NULL
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meals []models.Meal
	for rows.Next() {
		var m models.Meal
		if err := rows.Scan(&m.ID, &m.ChefID, &m.Name, &m.Description, &m.Price,
			&m.ImageURL, &m.IsAvailable, &m.CreatedAt); err != nil {
			return nil, err
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}
