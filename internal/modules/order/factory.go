package order

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
)

// ProductInfo is the live product data a build snapshots from.
type ProductInfo struct {
	ID           uuid.UUID
	SellerID     uuid.UUID
	Name         string
	Brand        string
	Category     string
	Price        float64
	SellingPrice float64
	Images       []string
}

// BuildInput carries everything needed to assemble one order.
type BuildInput struct {
	BuyerID         uuid.UUID
	Product         ProductInfo
	Quantity        int
	ShippingAddress json.RawMessage
	BuyerInfo       json.RawMessage
	OrderNotes      string
}

// Factory assembles fully-formed, not-yet-persisted orders. It has no side
// effects on shared state; persistence and stock reservation belong to the
// checkout service.
type Factory struct {
	tracking *TrackingGenerator
}

func NewFactory(tracking *TrackingGenerator) *Factory {
	return &Factory{tracking: tracking}
}

// Build validates the input, freezes the product snapshot, computes the
// total once, and seeds the status history with the placement entry.
func (f *Factory) Build(ctx context.Context, in BuildInput) (*Order, error) {
	if in.Quantity < 1 {
		return nil, validationErrorf("quantity must be a positive integer, got %d", in.Quantity)
	}
	if len(in.ShippingAddress) == 0 {
		return nil, validationErrorf("shipping address is required")
	}
	if in.BuyerID == in.Product.SellerID {
		return nil, &AuthorizationError{Reason: "you cannot purchase your own product"}
	}

	trackingNumber, err := f.tracking.Next(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	images := make([]string, len(in.Product.Images))
	copy(images, in.Product.Images)

	return &Order{
		ID:             uuid.New(),
		TrackingNumber: trackingNumber,
		BuyerID:        in.BuyerID,
		SellerID:       in.Product.SellerID,
		ProductID:      in.Product.ID,
		Product: ProductSnapshot{
			Name:         in.Product.Name,
			Brand:        in.Product.Brand,
			Category:     in.Product.Category,
			Price:        in.Product.Price,
			SellingPrice: in.Product.SellingPrice,
			Images:       images,
		},
		Quantity:      in.Quantity,
		TotalAmount:   round2(in.Product.SellingPrice * float64(in.Quantity)),
		OrderStatus:   StatusPending,
		PaymentStatus: PaymentPending,
		StatusHistory: []StatusEntry{
			{Status: StatusPending, Timestamp: now, Note: "Order placed"},
		},
		ShippingAddress: in.ShippingAddress,
		BuyerInfo:       in.BuyerInfo,
		OrderNotes:      in.OrderNotes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// round2 rounds a money amount to the cent, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
