package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines data access for orders.
type Repository interface {
	// CreateOrder persists a new order and its seeded status history in one transaction.
	CreateOrder(ctx context.Context, o *Order) error

	// DeleteOrder voids an order created earlier in a checkout that is being
	// rolled back. Orders are otherwise never deleted.
	DeleteOrder(ctx context.Context, id uuid.UUID) error

	// GetOrderByID retrieves an order with its status history.
	GetOrderByID(ctx context.Context, id string) (*Order, error)

	// GetOrderByTracking retrieves an order by its tracking number.
	GetOrderByTracking(ctx context.Context, trackingNumber string) (*Order, error)

	// ListOrdersByBuyer returns all orders placed by a buyer, newest first.
	ListOrdersByBuyer(ctx context.Context, buyerID string) ([]*Order, error)

	// ListOrdersBySeller returns all orders received by a seller, newest first.
	ListOrdersBySeller(ctx context.Context, sellerID string) ([]*Order, error)

	// UpdateStatus writes the new status columns and, when entry is non-nil,
	// appends the history entry in the same transaction. A status change
	// without its history entry is never observable.
	UpdateStatus(ctx context.Context, id uuid.UUID, orderStatus OrderStatus, paymentStatus PaymentStatus, entry *StatusEntry) error

	// TrackingNumberExists reports whether any order already carries the number.
	TrackingNumberExists(ctx context.Context, trackingNumber string) (bool, error)
}
