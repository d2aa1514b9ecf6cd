package dbhelper

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ray-remotestate/homeplate/database"
	"github.com/ray-remotestate/homeplate/models"
)

// CreateOrder persists the order and its line items in one transaction; the
// commit is the durable point of the checkout saga.
func CreateOrder(tx *sql.Tx, order *models.Order) error {
	err := tx.QueryRow(`
		INSERT INTO orders (owner_email, delivery_address, subtotal, delivery_fee, total_amount, order_status, payment_status)
		VALUES (LOWER($1), $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		order.OwnerEmail, order.DeliveryAddress, order.Subtotal, order.DeliveryFee,
		order.TotalAmount, order.OrderStatus, order.PaymentStatus).
		Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return err
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err := tx.QueryRow(`
			INSERT INTO order_items (order_id, meal_id, meal_name, unit_price, quantity, chef_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			item.OrderID, item.MealID, item.MealName, item.UnitPrice, item.Quantity, item.ChefID).
			Scan(&item.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func GetOrderByID(id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := database.HomePlate.QueryRow(`
		SELECT id, owner_email, delivery_address, subtotal, delivery_fee, total_amount,
		       order_status, payment_status, created_at
		FROM orders
		WHERE id = $1`, id).
		Scan(&order.ID, &order.OwnerEmail, &order.DeliveryAddress, &order.Subtotal,
			&order.DeliveryFee, &order.TotalAmount, &order.OrderStatus,
			&order.PaymentStatus, &order.CreatedAt)
	if err != nil {
		return nil, err
	}

	items, err := listOrderItems([]uuid.UUID{order.ID}, uuid.Nil)
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return &order, nil
}

func ListOrdersByOwner(email string) ([]models.Order, error) {
	return listOrders(`WHERE owner_email = LOWER($1)`, uuid.Nil, email)
}

// ListOrdersByChef returns orders containing at least one line item owned by
// the chef, with the items narrowed to that chef's lines.
func ListOrdersByChef(chefID uuid.UUID) ([]models.Order, error) {
	return listOrders(`WHERE id IN (SELECT order_id FROM order_items WHERE chef_id = $1)`, chefID, chefID)
}

func ListAllOrders() ([]models.Order, error) {
	return listOrders(``, uuid.Nil)
}

func listOrders(where string, chefFilter uuid.UUID, args ...interface{}) ([]models.Order, error) {
	rows, err := database.HomePlate.Query(`
		SELECT id, owner_email, delivery_address, subtotal, delivery_fee, total_amount,
		       order_status, payment_status, created_at
		FROM orders `+where+`
		ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	var ids []uuid.UUID
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.OwnerEmail, &o.DeliveryAddress, &o.Subtotal,
			&o.DeliveryFee, &o.TotalAmount, &o.OrderStatus, &o.PaymentStatus, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := listOrderItems(ids, chefFilter)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func listOrderItems(orderIDs []uuid.UUID, chefFilter uuid.UUID) (map[uuid.UUID][]models.OrderItem, error) {
	ids := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		ids[i] = id.String()
	}

	query := `
		SELECT id, order_id, meal_id, meal_name, unit_price, quantity, chef_id
		FROM order_items
		WHERE order_id = ANY($1::uuid[])`
	args := []interface{}{pq.Array(ids)}
	if chefFilter != uuid.Nil {
		query += ` AND chef_id = $2`
		args = append(args, chefFilter)
	}
	query += ` ORDER BY id`

	rows, err := database.HomePlate.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]models.OrderItem)
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MealID, &item.MealName,
			&item.UnitPrice, &item.Quantity, &item.ChefID); err != nil {
			return nil, err
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}
	return items, rows.Err()
}

// UpdateOrderStatus is a compare-and-swap on order_status: it only applies
// when the stored status still equals from. First successful writer wins.
func UpdateOrderStatus(id uuid.UUID, from, to models.OrderStatus) error {
	result, err := database.HomePlate.Exec(`
		UPDATE orders SET order_status = $1
		WHERE id = $2 AND order_status = $3`, to, id, from)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrStaleStatus
	}
	return nil
}

// SetPaymentStatus is the payment-side compare-and-swap. It never touches
// order_status, so the payment workflow and the state machine cannot clobber
// each other. It takes the caller's transaction so the swap commits atomically
// with the payment record it belongs to.
func SetPaymentStatus(tx *sql.Tx, id uuid.UUID, from, to models.PaymentStatus) error {
	result, err := tx.Exec(`
		UPDATE orders SET payment_status = $1
		WHERE id = $2 AND payment_status = $3`, to, id, from)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrStaleStatus
	}
	return nil
}
