package inventory

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrProductNotFound is returned when the referenced product does not exist.
var ErrProductNotFound = errors.New("product not found")

// InsufficientStockError reports a reservation that could not be backed by
// the stock on hand at the moment of the attempt.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: %d available, %d requested",
		e.ProductID, e.Available, e.Requested)
}

// Availability is the ledger's view of a product's stock at a point in time.
type Availability struct {
	ProductID    uuid.UUID `json:"product_id"`
	SellerID     uuid.UUID `json:"seller_id"`
	CurrentStock int       `json:"current_stock"`
	Available    bool      `json:"available"`
}
