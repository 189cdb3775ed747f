package notification

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/makolahq/makola-backend/internal/modules/order"
	"github.com/segmentio/kafka-go"
)

// Topic for order lifecycle events consumed by the email/notification workers.
const TopicOrderEvents = "order.events"

// KafkaNotifier publishes order events through an async writer. Publishing is
// fire-and-forget: a full inbox, broker failure, or a publish racing shutdown
// is logged and dropped, it never fails the order flow that triggered it.
type KafkaNotifier struct {
	w       *kafka.Writer
	write   func(ctx context.Context, msgs ...kafka.Message) error
	inbox   chan kafka.Message
	closeCh chan struct{}
}

func NewKafkaNotifier(brokers []string, buf int) *KafkaNotifier {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        TopicOrderEvents,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
	}
	return &KafkaNotifier{
		w:       w,
		write:   w.WriteMessages,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

// Start runs the publish loop until ctx is cancelled, then drains whatever is
// already queued. The inbox is never closed: producers only ever see an open
// channel, so a publish that races shutdown parks harmlessly in the buffer.
func (n *KafkaNotifier) Start(ctx context.Context) {
	go func() {
		defer close(n.closeCh)
		for {
			select {
			case <-ctx.Done():
				n.drain()
				_ = n.w.Close()
				return
			case m := <-n.inbox:
				n.send(m)
			}
		}
	}()
}

// WaitClosed blocks until the publish loop has flushed and exited.
func (n *KafkaNotifier) WaitClosed() { <-n.closeCh }

func (n *KafkaNotifier) drain() {
	for {
		select {
		case m := <-n.inbox:
			n.send(m)
		default:
			return
		}
	}
}

func (n *KafkaNotifier) send(m kafka.Message) {
	if err := n.write(context.Background(), m); err != nil {
		log.Printf("notification: publish: %v", err)
	}
}

func (n *KafkaNotifier) OrderPlaced(o *order.Order) {
	n.publish(Event{
		Type:           EventOrderPlaced,
		OrderID:        o.ID.String(),
		TrackingNumber: o.TrackingNumber,
		BuyerID:        o.BuyerID.String(),
		SellerID:       o.SellerID.String(),
		OrderStatus:    string(o.OrderStatus),
		PaymentStatus:  string(o.PaymentStatus),
		OccurredAt:     o.CreatedAt,
	})
}

func (n *KafkaNotifier) OrderStatusChanged(o *order.Order, entry *order.StatusEntry) {
	n.publish(Event{
		Type:           EventOrderStatusChanged,
		OrderID:        o.ID.String(),
		TrackingNumber: o.TrackingNumber,
		BuyerID:        o.BuyerID.String(),
		SellerID:       o.SellerID.String(),
		OrderStatus:    string(o.OrderStatus),
		PaymentStatus:  string(o.PaymentStatus),
		OccurredAt:     entry.Timestamp,
	})
}

func (n *KafkaNotifier) publish(e Event) {
	value, err := json.Marshal(e)
	if err != nil {
		log.Printf("notification: encode event: %v", err)
		return
	}

	select {
	case <-n.closeCh:
		log.Printf("notification: stopped, dropping %s for %s", e.Type, e.TrackingNumber)
		return
	default:
	}

	m := kafka.Message{Key: []byte(e.TrackingNumber), Value: value, Time: time.Now()}
	select {
	case n.inbox <- m:
	default:
		log.Printf("notification: inbox full, dropping %s for %s", e.Type, e.TrackingNumber)
	}
}
