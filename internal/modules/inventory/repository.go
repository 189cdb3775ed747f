package inventory

import "context"

// Repository defines stock data access. Reserve and Release must be atomic
// at the storage layer; the service never does a read-then-write on stock.
type Repository interface {
	// GetStock returns the current stock, owner and status for a product.
	GetStock(ctx context.Context, productID string) (*Availability, error)

	// ReserveStock decrements stock by qty only if stock >= qty, flipping the
	// product to "sold" when stock hits zero, all in one conditional update.
	// Returns the new stock level, ErrProductNotFound, or *InsufficientStockError.
	ReserveStock(ctx context.Context, productID string, qty int) (int, error)

	// ReleaseStock re-credits stock by qty and reverts a "sold" product to
	// "available". Compensating action for a failed checkout.
	ReleaseStock(ctx context.Context, productID string, qty int) error
}
