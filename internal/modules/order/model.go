package order

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusProcessing     OrderStatus = "processing"
	StatusShipped        OrderStatus = "shipped"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// PaymentStatus is the settlement state of an order.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// ProductSnapshot is the copy of product attributes frozen at order time.
// Later edits or deletion of the live listing never change it.
type ProductSnapshot struct {
	Name         string   `json:"name"`
	Brand        string   `json:"brand,omitempty"`
	Category     string   `json:"category"`
	Price        float64  `json:"price"`
	SellingPrice float64  `json:"sellingPrice"`
	Images       []string `json:"images,omitempty"`
}

// StatusEntry is one append-only audit record of a status transition.
type StatusEntry struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Note      string      `json:"note,omitempty"`
	Location  string      `json:"location,omitempty"`
}

// Order is one buyer purchasing one product in one checkout call.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	TrackingNumber  string          `json:"trackingNumber"`
	BuyerID         uuid.UUID       `json:"buyerId"`
	SellerID        uuid.UUID       `json:"sellerId"`
	ProductID       uuid.UUID       `json:"productId"`
	Product         ProductSnapshot `json:"product"`
	Quantity        int             `json:"quantity"`
	TotalAmount     float64         `json:"totalAmount"`
	OrderStatus     OrderStatus     `json:"orderStatus"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	StatusHistory   []StatusEntry   `json:"statusHistory"`
	ShippingAddress json.RawMessage `json:"shippingAddress,omitempty"`
	BuyerInfo       json.RawMessage `json:"buyerInfo,omitempty"`
	OrderNotes      string          `json:"orderNotes,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// LineItem is one (product, quantity) pair within a checkout request.
type LineItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// BuyRequest is the payload for a single-item purchase.
type BuyRequest struct {
	ProductID       string          `json:"productId"`
	Quantity        int             `json:"quantity"`
	ShippingAddress json.RawMessage `json:"shippingAddress"`
	BuyerInfo       json.RawMessage `json:"buyerInfo,omitempty"`
	PaymentMethod   string          `json:"paymentMethod,omitempty"`
	OrderNotes      string          `json:"orderNotes,omitempty"`
}

// CheckoutRequest is the payload for a multi-item cart checkout.
type CheckoutRequest struct {
	CartItems       []LineItem      `json:"cartItems"`
	ShippingAddress json.RawMessage `json:"shippingAddress"`
	BuyerInfo       json.RawMessage `json:"buyerInfo,omitempty"`
	PaymentMethod   string          `json:"paymentMethod,omitempty"`
	OrderNotes      string          `json:"orderNotes,omitempty"`
}

// SummaryLine is one row of the checkout response summary.
type SummaryLine struct {
	TrackingNumber string  `json:"trackingNumber"`
	ProductName    string  `json:"productName"`
	Quantity       int     `json:"quantity"`
	Amount         float64 `json:"amount"`
}

// CheckoutResult aggregates everything a checkout call produced.
type CheckoutResult struct {
	Orders           []*Order      `json:"orders"`
	TotalOrderAmount float64       `json:"totalOrderAmount"`
	TotalItems       int           `json:"totalItems"`
	OrderSummary     []SummaryLine `json:"orderSummary"`
}

// UpdateStatusRequest is the payload for advancing an order's status.
// Either field may be omitted; at least one must be present.
type UpdateStatusRequest struct {
	OrderStatus   string `json:"orderStatus,omitempty"`
	PaymentStatus string `json:"paymentStatus,omitempty"`
	Note          string `json:"note,omitempty"`
	Location      string `json:"location,omitempty"`
}

// TrackingView is the public, PII-free projection served by /track.
type TrackingView struct {
	TrackingNumber string        `json:"trackingNumber"`
	ProductName    string        `json:"productName"`
	Quantity       int           `json:"quantity"`
	OrderStatus    OrderStatus   `json:"orderStatus"`
	PaymentStatus  PaymentStatus `json:"paymentStatus"`
	StatusHistory  []StatusEntry `json:"statusHistory"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// TrackingProjection builds the public view of an order.
func (o *Order) TrackingProjection() *TrackingView {
	return &TrackingView{
		TrackingNumber: o.TrackingNumber,
		ProductName:    o.Product.Name,
		Quantity:       o.Quantity,
		OrderStatus:    o.OrderStatus,
		PaymentStatus:  o.PaymentStatus,
		StatusHistory:  o.StatusHistory,
		CreatedAt:      o.CreatedAt,
	}
}
