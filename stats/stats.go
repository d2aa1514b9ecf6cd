// Package stats derives platform metrics from the full order collection.
// Everything is recomputed on demand from the orders passed in; nothing is
// maintained incrementally, so the numbers cannot drift from the store.
package stats

import (
	"time"

	"github.com/ray-remotestate/homeplate/models"
)

// GrowthWindow is the trailing window compared against its preceding
// baseline for the growth percentages.
const GrowthWindow = 30 * 24 * time.Hour

type Overview struct {
	TotalOrders       int     `json:"total_orders"`
	DeliveredOrders   int     `json:"delivered_orders"`
	TotalRevenue      int64   `json:"total_revenue"`
	AverageOrderValue float64 `json:"average_order_value"`

	NewOrders            int     `json:"new_orders"`
	OrderGrowthPercent   float64 `json:"order_growth_percent"`
	NewRevenue           int64   `json:"new_revenue"`
	RevenueGrowthPercent float64 `json:"revenue_growth_percent"`

	OrdersByStatus  map[models.OrderStatus]int   `json:"orders_by_status"`
	OrdersByPayment map[models.PaymentStatus]int `json:"orders_by_payment"`

	// Reconciliation flags: orders awaiting payment past checkout, and
	// captures taken for orders that ended up cancelled. Neither is ever
	// resolved automatically.
	PendingPayments  int `json:"pending_payments"`
	PaidButCancelled int `json:"paid_but_cancelled"`

	GeneratedAt time.Time `json:"generated_at"`
}

// Compute aggregates the overview. Revenue is recognized at fulfillment:
// only delivered orders count, regardless of payment status.
func Compute(orders []models.Order, now time.Time) Overview {
	ov := Overview{
		OrdersByStatus:  make(map[models.OrderStatus]int),
		OrdersByPayment: make(map[models.PaymentStatus]int),
		GeneratedAt:     now,
	}

	windowStart := now.Add(-GrowthWindow)

	for _, o := range orders {
		ov.TotalOrders++
		ov.OrdersByStatus[o.OrderStatus]++
		ov.OrdersByPayment[o.PaymentStatus]++

		recent := o.CreatedAt.After(windowStart)
		if recent {
			ov.NewOrders++
		}

		if o.OrderStatus == models.OrderDelivered {
			ov.DeliveredOrders++
			ov.TotalRevenue += o.TotalAmount
			if recent {
				ov.NewRevenue += o.TotalAmount
			}
		}

		if o.PaymentStatus == models.PaymentPending {
			ov.PendingPayments++
		}
		if o.OrderStatus == models.OrderCancelled && o.PaymentStatus == models.PaymentPaid {
			ov.PaidButCancelled++
		}
	}

	if ov.DeliveredOrders > 0 {
		ov.AverageOrderValue = float64(ov.TotalRevenue) / float64(ov.DeliveredOrders)
	}

	ov.OrderGrowthPercent = growth(float64(ov.NewOrders), float64(ov.TotalOrders))
	ov.RevenueGrowthPercent = growth(float64(ov.NewRevenue), float64(ov.TotalRevenue))

	return ov
}

// growth compares the trailing window against the preceding baseline. A zero
// baseline with new activity is 100%, an empty history is 0%.
func growth(recent, total float64) float64 {
	baseline := total - recent
	if baseline == 0 {
		if recent > 0 {
			return 100
		}
		return 0
	}
	return recent / baseline * 100
}
