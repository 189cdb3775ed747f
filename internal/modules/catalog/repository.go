package catalog

import "context"

// Repository defines product catalog data access.
type Repository interface {
	// Create persists a new product listing.
	Create(ctx context.Context, p *Product) error

	// GetByID retrieves a product by UUID.
	GetByID(ctx context.Context, id string) (*Product, error)

	// List returns products, optionally filtered by category and/or seller.
	List(ctx context.Context, category, sellerID string) ([]*Product, error)

	// Update rewrites the mutable listing fields of a product.
	Update(ctx context.Context, p *Product) error
}
