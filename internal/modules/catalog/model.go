package catalog

import (
	"time"

	"github.com/google/uuid"
)

// ProductStatus reflects the sale state of a listing. A product flips to
// SOLD when its stock reaches zero; the inventory ledger owns that change.
type ProductStatus string

const (
	StatusAvailable ProductStatus = "available"
	StatusPending   ProductStatus = "pending"
	StatusSold      ProductStatus = "sold"
)

// Product is a listing put up by an independent seller.
type Product struct {
	ID           uuid.UUID     `json:"id"`
	SellerID     uuid.UUID     `json:"seller_id"`
	Name         string        `json:"name"`
	Brand        string        `json:"brand,omitempty"`
	Category     string        `json:"category"`
	Description  string        `json:"description,omitempty"`
	Price        float64       `json:"price"`
	SellingPrice float64       `json:"selling_price"`
	Images       []string      `json:"images,omitempty"`
	Stock        int           `json:"stock"`
	Status       ProductStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// CreateProductRequest holds the data for listing a new product.
// CountInStock is a legacy alias some clients still send; Stock wins when
// both are present.
type CreateProductRequest struct {
	Name         string   `json:"name"`
	Brand        string   `json:"brand"`
	Category     string   `json:"category"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	SellingPrice float64  `json:"selling_price"`
	Images       []string `json:"images"`
	Stock        int      `json:"stock"`
	CountInStock int      `json:"count_in_stock"`
}
