package dbhelper

import (
	"github.com/ray-remotestate/homeplate/database"
	"github.com/ray-remotestate/homeplate/models"
)

// AddCartItem inserts a selection or, when the meal is already in the cart,
// bumps its quantity. Price and chef are snapshotted from the meal at add
// time.
func AddCartItem(ownerEmail string, meal models.Meal, quantity int) (models.CartItem, error) {
	var item models.CartItem
	err := database.HomePlate.QueryRow(`
		INSERT INTO cart_items (owner_email, meal_id, meal_name, unit_price, quantity, chef_id)
		VALUES (LOWER($1), $2, $3, $4, $5, $6)
		ON CONFLICT (owner_email, meal_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING id, owner_email, meal_id, meal_name, unit_price, quantity, chef_id, created_at, updated_at`,
		ownerEmail, meal.ID, meal.Name, meal.Price, quantity, meal.ChefID).
		Scan(&item.ID, &item.OwnerEmail, &item.MealID, &item.MealName, &item.UnitPrice,
			&item.Quantity, &item.ChefID, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}

func SetCartItemQuantity(ownerEmail string, itemID int64, quantity int) (models.CartItem, error) {
	var item models.CartItem
	err := database.HomePlate.QueryRow(`
		UPDATE cart_items
		SET quantity = $1, updated_at = now()
		WHERE id = $2 AND owner_email = LOWER($3)
		RETURNING id, owner_email, meal_id, meal_name, unit_price, quantity, chef_id, created_at, updated_at`,
		quantity, itemID, ownerEmail).
		Scan(&item.ID, &item.OwnerEmail, &item.MealID, &item.MealName, &item.UnitPrice,
			&item.Quantity, &item.ChefID, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}

func RemoveCartItem(ownerEmail string, itemID int64) error {
	result, err := database.HomePlate.Exec(`
		DELETE FROM cart_items
		WHERE id = $1 AND owner_email = LOWER($2)`, itemID, ownerEmail)
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

func ClearCart(ownerEmail string) error {
	_, err := database.HomePlate.Exec(`DELETE FROM cart_items WHERE owner_email = LOWER($1)`, ownerEmail)
	return err
}

// ListCartItems returns the cart in insertion order.
func ListCartItems(ownerEmail string) ([]models.CartItem, error) {
	rows, err := database.HomePlate.Query(`
		SELECT id, owner_email, meal_id, meal_name, unit_price, quantity, chef_id, created_at, updated_at
		FROM cart_items
		WHERE owner_email = LOWER($1)
		ORDER BY id`, ownerEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.CartItem
	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(&item.ID, &item.OwnerEmail, &item.MealID, &item.MealName,
			&item.UnitPrice, &item.Quantity, &item.ChefID, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
