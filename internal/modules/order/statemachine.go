package order

import "time"

// Actor identifies who is requesting a status change, relative to the order.
type Actor string

const (
	ActorBuyer  Actor = "buyer"
	ActorSeller Actor = "seller"
	ActorAdmin  Actor = "admin"
)

// validTransitions defines the allowed order status state machine. Every
// non-terminal state may also move to cancelled.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:        {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusProcessing, StatusCancelled},
	StatusProcessing:     {StatusShipped, StatusCancelled},
	StatusShipped:        {StatusOutForDelivery, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered, StatusCancelled},
	StatusDelivered:      {},
	StatusCancelled:      {},
}

// validPaymentTransitions defines the payment state machine; both targets
// are terminal.
var validPaymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:   {PaymentCompleted, PaymentFailed},
	PaymentCompleted: {},
	PaymentFailed:    {},
}

func canTransition(from, to OrderStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func canTransitionPayment(from, to PaymentStatus) bool {
	for _, next := range validPaymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the order can still move.
func (o *Order) IsTerminal() bool {
	return o.OrderStatus == StatusDelivered || o.OrderStatus == StatusCancelled
}

// ActorFor maps a caller to their relationship with this order. Callers who
// are neither party and not admin get no actor.
func (o *Order) ActorFor(userID string, admin bool) (Actor, bool) {
	if admin {
		return ActorAdmin, true
	}
	switch userID {
	case o.SellerID.String():
		return ActorSeller, true
	case o.BuyerID.String():
		return ActorBuyer, true
	}
	return "", false
}

// Transition applies one order status change on behalf of actor, appending
// the matching history entry. The caller persists both in one transaction.
func (o *Order) Transition(actor Actor, to OrderStatus, note, location string, now time.Time) (*StatusEntry, error) {
	if !canTransition(o.OrderStatus, to) {
		return nil, &InvalidTransitionError{Field: "orderStatus", From: string(o.OrderStatus), To: string(to)}
	}
	if actor == ActorBuyer && to != StatusCancelled {
		return nil, &AuthorizationError{Reason: "buyers may only cancel their orders"}
	}

	entry := StatusEntry{Status: to, Timestamp: now, Note: note, Location: location}
	o.OrderStatus = to
	o.StatusHistory = append(o.StatusHistory, entry)
	o.UpdatedAt = now
	return &entry, nil
}

// TransitionPayment applies one payment status change. Only the seller or an
// admin may settle or fail a payment.
func (o *Order) TransitionPayment(actor Actor, to PaymentStatus, now time.Time) error {
	if actor == ActorBuyer {
		return &AuthorizationError{Reason: "buyers may not update payment status"}
	}
	if !canTransitionPayment(o.PaymentStatus, to) {
		return &InvalidTransitionError{Field: "paymentStatus", From: string(o.PaymentStatus), To: string(to)}
	}
	o.PaymentStatus = to
	o.UpdatedAt = now
	return nil
}
