package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/makolahq/makola-backend/internal/modules/catalog"
	"github.com/makolahq/makola-backend/internal/modules/inventory"
)

// Catalog is the slice of the product catalog the order flow reads.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
}

// Ledger is the inventory operations checkout depends on.
type Ledger interface {
	CheckAvailability(ctx context.Context, productID string, qty int) (*inventory.Availability, error)
	Reserve(ctx context.Context, productID string, qty int) (int, error)
	Release(ctx context.Context, productID string, qty int) error
}

// Notifier delivers fire-and-forget order events. Implementations must never
// block the caller or surface failures.
type Notifier interface {
	OrderPlaced(o *Order)
	OrderStatusChanged(o *Order, entry *StatusEntry)
}

// Payments starts settlement with an external provider, best effort.
type Payments interface {
	Initiate(ctx context.Context, method string, amount float64, orderRef string)
}

// Service defines the order business logic: checkout orchestration, status
// governance, and tracking lookups.
type Service interface {
	// BuyProduct runs a single-item checkout and returns the created order.
	BuyProduct(ctx context.Context, buyerID string, req BuyRequest) (*Order, error)

	// Checkout converts a cart into orders, all-or-nothing: either every line
	// produces an order with its stock decrement, or nothing is left behind.
	Checkout(ctx context.Context, buyerID string, req CheckoutRequest) (*CheckoutResult, error)

	// ListBuyerOrders returns the caller's orders, newest first.
	ListBuyerOrders(ctx context.Context, buyerID string) ([]*Order, error)

	// ListSellerOrders returns orders received by the caller as a seller.
	ListSellerOrders(ctx context.Context, sellerID string) ([]*Order, error)

	// UpdateStatus advances order and/or payment status under the state
	// machine and authorization rules.
	UpdateStatus(ctx context.Context, callerID string, admin bool, orderID string, req UpdateStatusRequest) (*Order, error)

	// Track returns the public tracking projection for a tracking number.
	Track(ctx context.Context, trackingNumber string) (*TrackingView, error)
}

type service struct {
	repo     Repository
	catalog  Catalog
	ledger   Ledger
	factory  *Factory
	notifier Notifier
	payments Payments
	cache    *TrackingCache // optional
}

// NewService creates a new order service. notifier and payments may be no-op
// implementations; cache may be nil.
func NewService(repo Repository, cat Catalog, ledger Ledger, factory *Factory, notifier Notifier, payments Payments, cache *TrackingCache) Service {
	return &service{
		repo:     repo,
		catalog:  cat,
		ledger:   ledger,
		factory:  factory,
		notifier: notifier,
		payments: payments,
		cache:    cache,
	}
}

func (s *service) BuyProduct(ctx context.Context, buyerID string, req BuyRequest) (*Order, error) {
	result, err := s.Checkout(ctx, buyerID, CheckoutRequest{
		CartItems:       []LineItem{{ProductID: req.ProductID, Quantity: req.Quantity}},
		ShippingAddress: req.ShippingAddress,
		BuyerInfo:       req.BuyerInfo,
		PaymentMethod:   req.PaymentMethod,
		OrderNotes:      req.OrderNotes,
	})
	if err != nil {
		return nil, err
	}
	return result.Orders[0], nil
}

// checkoutLine pairs a validated cart line with the product it resolved to.
type checkoutLine struct {
	item    LineItem
	product *catalog.Product
}

func (s *service) Checkout(ctx context.Context, buyerID string, req CheckoutRequest) (*CheckoutResult, error) {
	if len(req.CartItems) == 0 {
		return nil, validationErrorf("cart must contain at least one item")
	}
	buyer, err := uuid.Parse(buyerID)
	if err != nil {
		return nil, validationErrorf("invalid buyer id")
	}
	if len(req.ShippingAddress) == 0 {
		return nil, validationErrorf("shipping address is required")
	}

	// ── Validation phase: no side effects until every line passes ─────────────
	lines := make([]checkoutLine, 0, len(req.CartItems))
	for _, item := range req.CartItems {
		if item.Quantity <= 0 {
			return nil, validationErrorf("quantity must be a positive integer for product %s", item.ProductID)
		}
		product, err := s.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, fmt.Errorf("product %s: %w", item.ProductID, inventory.ErrProductNotFound)
			}
			return nil, fmt.Errorf("load product %s: %w", item.ProductID, err)
		}
		if product.SellerID == buyer {
			return nil, &AuthorizationError{Reason: fmt.Sprintf("you cannot purchase your own product %s", item.ProductID)}
		}
		avail, err := s.ledger.CheckAvailability(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return nil, err
		}
		if !avail.Available {
			return nil, &inventory.InsufficientStockError{
				ProductID: item.ProductID,
				Available: avail.CurrentStock,
				Requested: item.Quantity,
			}
		}
		lines = append(lines, checkoutLine{item: item, product: product})
	}

	// ── Commit phase ──────────────────────────────────────────────────────────
	// Detached from the client connection: a disconnect mid-checkout must not
	// strand a reservation without its order.
	commitCtx := context.WithoutCancel(ctx)

	var created []*Order
	var reserved []checkoutLine
	for _, line := range lines {
		if _, err := s.ledger.Reserve(commitCtx, line.item.ProductID, line.item.Quantity); err != nil {
			s.rollback(commitCtx, reserved, created)
			return nil, err
		}
		reserved = append(reserved, line)

		o, err := s.factory.Build(commitCtx, BuildInput{
			BuyerID:         buyer,
			Product:         productInfo(line.product),
			Quantity:        line.item.Quantity,
			ShippingAddress: req.ShippingAddress,
			BuyerInfo:       req.BuyerInfo,
			OrderNotes:      req.OrderNotes,
		})
		if err != nil {
			s.rollback(commitCtx, reserved, created)
			return nil, err
		}
		if err := s.repo.CreateOrder(commitCtx, o); err != nil {
			s.rollback(commitCtx, reserved, created)
			return nil, fmt.Errorf("failed to persist order: %w", err)
		}
		created = append(created, o)
	}

	result := &CheckoutResult{Orders: created, TotalItems: len(created)}
	for _, o := range created {
		result.TotalOrderAmount += o.TotalAmount
		result.OrderSummary = append(result.OrderSummary, SummaryLine{
			TrackingNumber: o.TrackingNumber,
			ProductName:    o.Product.Name,
			Quantity:       o.Quantity,
			Amount:         o.TotalAmount,
		})
		s.notifier.OrderPlaced(o)
		if req.PaymentMethod != "" {
			s.payments.Initiate(commitCtx, req.PaymentMethod, o.TotalAmount, o.TrackingNumber)
		}
		s.cacheProjection(commitCtx, o)
	}
	result.TotalOrderAmount = round2(result.TotalOrderAmount)
	return result, nil
}

// rollback undoes every reservation and order this checkout already
// committed. Compensation is best effort: failures are logged, not returned.
func (s *service) rollback(ctx context.Context, reserved []checkoutLine, created []*Order) {
	for _, line := range reserved {
		if err := s.ledger.Release(ctx, line.item.ProductID, line.item.Quantity); err != nil {
			log.Printf("checkout rollback: release %s x%d: %v", line.item.ProductID, line.item.Quantity, err)
		}
	}
	for _, o := range created {
		if err := s.repo.DeleteOrder(ctx, o.ID); err != nil {
			log.Printf("checkout rollback: void order %s: %v", o.ID, err)
		}
	}
}

func (s *service) ListBuyerOrders(ctx context.Context, buyerID string) ([]*Order, error) {
	return s.repo.ListOrdersByBuyer(ctx, buyerID)
}

func (s *service) ListSellerOrders(ctx context.Context, sellerID string) ([]*Order, error) {
	return s.repo.ListOrdersBySeller(ctx, sellerID)
}

func (s *service) UpdateStatus(ctx context.Context, callerID string, admin bool, orderID string, req UpdateStatusRequest) (*Order, error) {
	if req.OrderStatus == "" && req.PaymentStatus == "" {
		return nil, validationErrorf("orderStatus or paymentStatus is required")
	}

	o, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	actor, ok := o.ActorFor(callerID, admin)
	if !ok {
		return nil, &AuthorizationError{Reason: "you are not a party to this order"}
	}

	now := time.Now().UTC()
	var entry *StatusEntry
	if req.OrderStatus != "" {
		entry, err = o.Transition(actor, OrderStatus(req.OrderStatus), req.Note, req.Location, now)
		if err != nil {
			return nil, err
		}
	}
	if req.PaymentStatus != "" {
		if err := o.TransitionPayment(actor, PaymentStatus(req.PaymentStatus), now); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateStatus(ctx, o.ID, o.OrderStatus, o.PaymentStatus, entry); err != nil {
		return nil, err
	}

	if entry != nil {
		s.notifier.OrderStatusChanged(o, entry)
	}
	s.cacheProjection(ctx, o)
	return o, nil
}

func (s *service) Track(ctx context.Context, trackingNumber string) (*TrackingView, error) {
	if s.cache != nil {
		if view, ok := s.cache.Get(ctx, trackingNumber); ok {
			return view, nil
		}
	}
	o, err := s.repo.GetOrderByTracking(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	view := o.TrackingProjection()
	s.cacheView(ctx, view)
	return view, nil
}

func (s *service) cacheProjection(ctx context.Context, o *Order) {
	s.cacheView(ctx, o.TrackingProjection())
}

func (s *service) cacheView(ctx context.Context, view *TrackingView) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, view); err != nil {
		log.Printf("tracking cache: set %s: %v", view.TrackingNumber, err)
	}
}

func productInfo(p *catalog.Product) ProductInfo {
	return ProductInfo{
		ID:           p.ID,
		SellerID:     p.SellerID,
		Name:         p.Name,
		Brand:        p.Brand,
		Category:     p.Category,
		Price:        p.Price,
		SellingPrice: p.SellingPrice,
		Images:       p.Images,
	}
}

// IsNotFound reports whether err is any of the not-found errors checkout can see.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, inventory.ErrProductNotFound)
}
