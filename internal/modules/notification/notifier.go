package notification

import (
	"log"
	"time"

	"github.com/makolahq/makola-backend/internal/modules/order"
)

// Event is the payload published for order lifecycle changes.
type Event struct {
	Type           string    `json:"type"`
	OrderID        string    `json:"order_id"`
	TrackingNumber string    `json:"tracking_number"`
	BuyerID        string    `json:"buyer_id"`
	SellerID       string    `json:"seller_id"`
	OrderStatus    string    `json:"order_status"`
	PaymentStatus  string    `json:"payment_status"`
	OccurredAt     time.Time `json:"occurred_at"`
}

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

// LogNotifier writes events to the process log. Used when no broker is
// configured; order placement must never depend on delivery.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) OrderPlaced(o *order.Order) {
	log.Printf("notification: order placed tracking=%s total=%.2f", o.TrackingNumber, o.TotalAmount)
}

func (n *LogNotifier) OrderStatusChanged(o *order.Order, entry *order.StatusEntry) {
	log.Printf("notification: order %s status=%s", o.TrackingNumber, entry.Status)
}
