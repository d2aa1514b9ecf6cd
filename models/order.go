package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// Terminal reports whether no further transition is defined out of s.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

type Event string

const (
	EventAccept  Event = "accept"
	EventDeliver Event = "deliver"
	EventCancel  Event = "cancel"
)

// DeliveryFee is the flat fee applied to every order with a non-zero
// subtotal.
const DeliveryFee int64 = 60

var (
	ErrUnknownEvent      = errors.New("unknown order event")
	ErrOrderClosed       = errors.New("order is already in a terminal state")
	ErrInvalidTransition = errors.New("event not allowed from current status")
	ErrNotAllowed        = errors.New("principal may not trigger this event")
)

type OrderItem struct {
	ID        int64     `db:"id" json:"id"`
	OrderID   uuid.UUID `db:"order_id" json:"order_id"`
	MealID    uuid.UUID `db:"meal_id" json:"meal_id"`
	MealName  string    `db:"meal_name" json:"meal_name"`
	UnitPrice int64     `db:"unit_price" json:"unit_price"`
	Quantity  int       `db:"quantity" json:"quantity"`
	ChefID    uuid.UUID `db:"chef_id" json:"chef_id"`
}

// Order is the durable record of one checkout. Line items and amounts are
// frozen at creation; only order_status and payment_status ever change, each
// through its own compare-and-swap.
type Order struct {
	ID              uuid.UUID     `db:"id" json:"id"`
	OwnerEmail      string        `db:"owner_email" json:"owner_email"`
	Items           []OrderItem   `db:"-" json:"items"`
	DeliveryAddress string        `db:"delivery_address" json:"delivery_address"`
	Subtotal        int64         `db:"subtotal" json:"subtotal"`
	DeliveryFee     int64         `db:"delivery_fee" json:"delivery_fee"`
	TotalAmount     int64         `db:"total_amount" json:"total_amount"`
	OrderStatus     OrderStatus   `db:"order_status" json:"order_status"`
	PaymentStatus   PaymentStatus `db:"payment_status" json:"payment_status"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
}

// ChefOwns reports whether any line item of the order belongs to the chef.
// A cart may mix meals from several chefs, so ownership of a single line is
// enough to act on the order.
func (o *Order) ChefOwns(chefID uuid.UUID) bool {
	for _, item := range o.Items {
		if item.ChefID == chefID {
			return true
		}
	}
	return false
}

// ComputeTotals derives the frozen amounts for a new order. The delivery fee
// applies only when there is something to deliver.
func ComputeTotals(items []OrderItem) (subtotal, fee, total int64) {
	for _, item := range items {
		subtotal += item.UnitPrice * int64(item.Quantity)
	}
	if subtotal > 0 {
		fee = DeliveryFee
	}
	return subtotal, fee, subtotal + fee
}

// NextStatus returns the status an order moves to when event fires from
// current. Terminal states reject every event.
func NextStatus(current OrderStatus, event Event) (OrderStatus, error) {
	if current.Terminal() {
		return "", ErrOrderClosed
	}
	switch event {
	case EventAccept:
		if current == OrderPending {
			return OrderAccepted, nil
		}
	case EventDeliver:
		if current == OrderAccepted {
			return OrderDelivered, nil
		}
	case EventCancel:
		if current == OrderPending || current == OrderAccepted {
			return OrderCancelled, nil
		}
	default:
		return "", ErrUnknownEvent
	}
	return "", ErrInvalidTransition
}

// Authorize decides whether the principal may fire event on the order. It is
// checked before the state transition itself, so an unauthorized caller gets
// ErrNotAllowed even when the move would be legal.
//
// accept/deliver: admin, or a chef owning one of the order's line items.
// cancel: admin, an owning chef, or the customer who placed the order while
// it is still pending.
func Authorize(p Principal, o *Order, event Event) error {
	switch event {
	case EventAccept, EventDeliver:
		if p.Is(RoleAdmin) || (p.Is(RoleChef) && o.ChefOwns(p.UserID)) {
			return nil
		}
	case EventCancel:
		if p.Is(RoleAdmin) || (p.Is(RoleChef) && o.ChefOwns(p.UserID)) {
			return nil
		}
		if strings.EqualFold(p.Email, o.OwnerEmail) && o.OrderStatus == OrderPending {
			return nil
		}
	default:
		return ErrUnknownEvent
	}
	return ErrNotAllowed
}
