package order

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makolahq/makola-backend/internal/modules/catalog"
	"github.com/makolahq/makola-backend/internal/modules/inventory"
)

// ── fakes ────────────────────────────────────────────────────────────────────

type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]*catalog.Product
	getErr   error // injected lookup failure
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{products: map[string]*catalog.Product{}}
}

func (f *fakeCatalog) add(sellerID uuid.UUID, name string, sellingPrice float64, stock int) *catalog.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &catalog.Product{
		ID:           uuid.New(),
		SellerID:     sellerID,
		Name:         name,
		Category:     "misc",
		Price:        sellingPrice * 1.2,
		SellingPrice: sellingPrice,
		Stock:        stock,
		Status:       catalog.StatusAvailable,
	}
	f.products[p.ID.String()] = p
	return p
}

func (f *fakeCatalog) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return p, nil
}

// fakeLedger reserves under one lock, mirroring the SQL conditional update.
type fakeLedger struct {
	mu         sync.Mutex
	stock      map[string]int
	reserveErr map[string]error // injected Reserve failures per product
	releases   map[string]int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		stock:      map[string]int{},
		reserveErr: map[string]error{},
		releases:   map[string]int{},
	}
}

func (f *fakeLedger) CheckAvailability(ctx context.Context, productID string, qty int) (*inventory.Availability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stock, ok := f.stock[productID]
	if !ok {
		return nil, inventory.ErrProductNotFound
	}
	return &inventory.Availability{CurrentStock: stock, Available: stock >= qty}, nil
}

func (f *fakeLedger) Reserve(ctx context.Context, productID string, qty int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.reserveErr[productID]; err != nil {
		return 0, err
	}
	stock, ok := f.stock[productID]
	if !ok {
		return 0, inventory.ErrProductNotFound
	}
	if stock < qty {
		return 0, &inventory.InsufficientStockError{ProductID: productID, Available: stock, Requested: qty}
	}
	f.stock[productID] = stock - qty
	return f.stock[productID], nil
}

func (f *fakeLedger) Release(ctx context.Context, productID string, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stock[productID] += qty
	f.releases[productID] += qty
	return nil
}

type fakeOrderRepo struct {
	mu         sync.Mutex
	orders     map[uuid.UUID]*Order
	createHook func(o *Order) error
	deleted    int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[uuid.UUID]*Order{}}
}

func (f *fakeOrderRepo) CreateOrder(ctx context.Context, o *Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createHook != nil {
		if err := f.createHook(o); err != nil {
			return err
		}
	}
	clone := *o
	f.orders[o.ID] = &clone
	return nil
}

func (f *fakeOrderRepo) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.orders, id)
	f.deleted++
	return nil
}

func (f *fakeOrderRepo) GetOrderByID(ctx context.Context, id string) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	o, ok := f.orders[uid]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *o
	return &clone, nil
}

func (f *fakeOrderRepo) GetOrderByTracking(ctx context.Context, tn string) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.TrackingNumber == tn {
			clone := *o
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeOrderRepo) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Order
	for _, o := range f.orders {
		if o.BuyerID.String() == buyerID {
			clone := *o
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) ListOrdersBySeller(ctx context.Context, sellerID string) ([]*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Order
	for _, o := range f.orders {
		if o.SellerID.String() == sellerID {
			clone := *o
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, orderStatus OrderStatus, paymentStatus PaymentStatus, entry *StatusEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.OrderStatus = orderStatus
	o.PaymentStatus = paymentStatus
	if entry != nil {
		o.StatusHistory = append(o.StatusHistory, *entry)
	}
	return nil
}

func (f *fakeOrderRepo) TrackingNumberExists(ctx context.Context, tn string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.TrackingNumber == tn {
			return true, nil
		}
	}
	return false, nil
}

type nopNotifier struct{}

func (nopNotifier) OrderPlaced(*Order)                      {}
func (nopNotifier) OrderStatusChanged(*Order, *StatusEntry) {}

type nopPayments struct{}

func (nopPayments) Initiate(context.Context, string, float64, string) {}

// ── fixture ──────────────────────────────────────────────────────────────────

type checkoutFixture struct {
	repo    *fakeOrderRepo
	catalog *fakeCatalog
	ledger  *fakeLedger
	service Service
}

func newCheckoutFixture() *checkoutFixture {
	repo := newFakeOrderRepo()
	cat := newFakeCatalog()
	ledger := newFakeLedger()
	factory := NewFactory(NewTrackingGenerator(repo))
	svc := NewService(repo, cat, ledger, factory, nopNotifier{}, nopPayments{}, nil)
	return &checkoutFixture{repo: repo, catalog: cat, ledger: ledger, service: svc}
}

func (fx *checkoutFixture) addProduct(sellerID uuid.UUID, name string, price float64, stock int) *catalog.Product {
	p := fx.catalog.add(sellerID, name, price, stock)
	fx.ledger.stock[p.ID.String()] = stock
	return p
}

func shipping() json.RawMessage {
	return json.RawMessage(`{"street":"4 Harbour Ln","city":"Mombasa"}`)
}

// ── checkout ─────────────────────────────────────────────────────────────────

func TestBuyProduct(t *testing.T) {
	fx := newCheckoutFixture()
	buyer := uuid.New()
	p := fx.addProduct(uuid.New(), "Clay pot", 10, 5)

	o, err := fx.service.BuyProduct(context.Background(), buyer.String(), BuyRequest{
		ProductID:       p.ID.String(),
		Quantity:        2,
		ShippingAddress: shipping(),
	})
	require.NoError(t, err)

	assert.Equal(t, 20.0, o.TotalAmount)
	assert.Equal(t, StatusPending, o.OrderStatus)
	assert.Regexp(t, trackingFormat, o.TrackingNumber)
	assert.Equal(t, 3, fx.ledger.stock[p.ID.String()])
	assert.Len(t, fx.repo.orders, 1)
}

func TestCheckoutAggregatesCart(t *testing.T) {
	fx := newCheckoutFixture()
	buyer := uuid.New()
	a := fx.addProduct(uuid.New(), "Sandals", 8, 10)
	b := fx.addProduct(uuid.New(), "Kente scarf", 25, 4)

	result, err := fx.service.Checkout(context.Background(), buyer.String(), CheckoutRequest{
		CartItems: []LineItem{
			{ProductID: a.ID.String(), Quantity: 2},
			{ProductID: b.ID.String(), Quantity: 1},
		},
		ShippingAddress: shipping(),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalItems)
	assert.Equal(t, 41.0, result.TotalOrderAmount)
	require.Len(t, result.Orders, 2)
	require.Len(t, result.OrderSummary, 2)
	assert.Equal(t, "Sandals", result.OrderSummary[0].ProductName)

	// Tracking numbers are unique across the cart.
	assert.NotEqual(t, result.Orders[0].TrackingNumber, result.Orders[1].TrackingNumber)
	assert.Equal(t, 8, fx.ledger.stock[a.ID.String()])
	assert.Equal(t, 3, fx.ledger.stock[b.ID.String()])
}

func TestCheckoutRejectsEmptyCartAndBadQuantities(t *testing.T) {
	fx := newCheckoutFixture()
	buyer := uuid.New()
	p := fx.addProduct(uuid.New(), "Beads", 3, 10)

	var validationErr *ValidationError

	_, err := fx.service.Checkout(context.Background(), buyer.String(), CheckoutRequest{
		ShippingAddress: shipping(),
	})
	require.ErrorAs(t, err, &validationErr)

	_, err = fx.service.Checkout(context.Background(), buyer.String(), CheckoutRequest{
		CartItems:       []LineItem{{ProductID: p.ID.String(), Quantity: 0}},
		ShippingAddress: shipping(),
	})
	require.ErrorAs(t, err, &validationErr)

	assert.Equal(t, 10, fx.ledger.stock[p.ID.String()], "no side effects on rejection")
	assert.Empty(t, fx.repo.orders)
}

func TestCheckoutAbortsWholeCartWhenOneLineFails(t *testing.T) {
	fx := newCheckoutFixture()
	buyer := uuid.New()
	a := fx.addProduct(uuid.New(), "Basket", 5, 10)
	b := fx.addProduct(uuid.New(), "Drum", 40, 5)

	_, err := fx.service.Checkout(context.Background(), buyer.String(), CheckoutRequest{
		CartItems: []LineItem{
			{ProductID: a.ID.String(), Quantity: 1},
			{ProductID: b.ID.String(), Quantity: 100},
		},
		ShippingAddress: shipping(),
	})

	var insufficient *inventory.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, b.ID.String(), insufficient.ProductID)
	assert.Equal(t, 5, insufficient.Available)
	assert.Equal(t, 100, insufficient.Requested)

	// Nothing was touched for product A either.
	assert.Equal(t, 10, fx.ledger.stock[a.ID.String()])
	assert.Empty(t, fx.repo.orders)
}

func TestCheckoutRejectsSelfPurchaseBeforeAnyMutation(t *testing.T) {
	fx := newCheckoutFixture()
	seller := uuid.New()
	p := fx.addProduct(seller, "Mirror", 30, 2)

	_, err := fx.service.Checkout(context.Background(), seller.String(), CheckoutRequest{
		CartItems:       []LineItem{{ProductID: p.ID.String(), Quantity: 1}},
		ShippingAddress: shipping(),
	})

	var authErr *AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 2, fx.ledger.stock[p.ID.String()])
	assert.Empty(t, fx.repo.orders)
}

func TestCheckoutRejectsUnknownProduct(t *testing.T) {
	fx := newCheckoutFixture()

	_, err := fx.service.Checkout(context.Background(), uuid.New().String(), CheckoutRequest{
		CartItems:       []LineItem{{ProductID: uuid.New().String(), Quantity: 1}},
		ShippingAddress: shipping(),
	})
	require.ErrorIs(t, err, inventory.ErrProductNotFound)
}

func TestCheckoutCatalogOutageIsNotANotFound(t *testing.T) {
	fx := newCheckoutFixture()
	p := fx.addProduct(uuid.New(), "Clay pot", 10, 5)
	fx.catalog.getErr = errors.New("dial tcp 10.0.0.5:5432: connection refused")

	_, err := fx.service.Checkout(context.Background(), uuid.New().String(), CheckoutRequest{
		CartItems:       []LineItem{{ProductID: p.ID.String(), Quantity: 1}},
		ShippingAddress: shipping(),
	})
	require.Error(t, err)
	assert.False(t, errors.Is(err, inventory.ErrProductNotFound))
	assert.Contains(t, err.Error(), "connection refused")

	// Validation failed, so no stock moved and no order was written.
	assert.Equal(t, 5, fx.ledger.stock[p.ID.String()])
	assert.Empty(t, fx.repo.orders)
}

func TestCheckoutRollsBackWhenReserveFailsMidCommit(t *testing.T) {
	fx := newCheckoutFixture()
	buyer := uuid.New()
	a := fx.addProduct(uuid.New(), "Lamp", 12, 6)
	b := fx.addProduct(uuid.New(), "Rug", 60, 3)

	// B passes validation but loses the race at reserve time.
	fx.ledger.reserveErr[b.ID.String()] = &inventory.InsufficientStockError{
		ProductID: b.ID.String(), Available: 0, Requested: 1,
	}

	_, err := fx.service.Checkout(context.Background(), buyer.String(), CheckoutRequest{
		CartItems: []LineItem{
			{ProductID: a.ID.String(), Quantity: 2},
			{ProductID: b.ID.String(), Quantity: 1},
		},
		ShippingAddress: shipping(),
	})

	var insufficient *inventory.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)

	// A's reservation was compensated and its order voided.
	assert.Equal(t, 6, fx.ledger.stock[a.ID.String()])
	assert.Equal(t, 2, fx.ledger.releases[a.ID.String()])
	assert.Empty(t, fx.repo.orders)
	assert.Equal(t, 1, fx.repo.deleted)
}

func TestCheckoutRollsBackWhenPersistFails(t *testing.T) {
	fx := newCheckoutFixture()
	buyer := uuid.New()
	a := fx.addProduct(uuid.New(), "Vase", 9, 4)
	b := fx.addProduct(uuid.New(), "Stool", 18, 4)

	// The second insert fails, e.g. a storage timeout mid-commit.
	inserts := 0
	fx.repo.createHook = func(o *Order) error {
		inserts++
		if inserts == 2 {
			return errors.New("driver: connection reset")
		}
		return nil
	}

	_, err := fx.service.Checkout(context.Background(), buyer.String(), CheckoutRequest{
		CartItems: []LineItem{
			{ProductID: a.ID.String(), Quantity: 1},
			{ProductID: b.ID.String(), Quantity: 1},
		},
		ShippingAddress: shipping(),
	})
	require.Error(t, err)

	// Both reservations were released; no order from this checkout survives.
	assert.Equal(t, 4, fx.ledger.stock[a.ID.String()])
	assert.Equal(t, 4, fx.ledger.stock[b.ID.String()])
	assert.Empty(t, fx.repo.orders)
}

func TestConcurrentCheckoutLastUnit(t *testing.T) {
	fx := newCheckoutFixture()
	p := fx.addProduct(uuid.New(), "One-off print", 50, 1)

	// Both buyers pass validation before either reserves, forcing the race
	// onto the ledger's atomic reserve.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = fx.service.Checkout(context.Background(), uuid.New().String(), CheckoutRequest{
				CartItems:       []LineItem{{ProductID: p.ID.String(), Quantity: 1}},
				ShippingAddress: shipping(),
			})
		}(i)
	}
	wg.Wait()

	var succeeded, insufficient int
	for _, err := range errs {
		var ise *inventory.InsufficientStockError
		switch {
		case err == nil:
			succeeded++
		case errors.As(err, &ise):
			insufficient++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one buyer gets the last unit")
	assert.Equal(t, 1, insufficient)
	assert.Len(t, fx.repo.orders, 1)
	assert.Equal(t, 0, fx.ledger.stock[p.ID.String()])
}

// ── status updates ───────────────────────────────────────────────────────────

func placeOrder(t *testing.T, fx *checkoutFixture) (*Order, uuid.UUID, uuid.UUID) {
	t.Helper()
	buyer := uuid.New()
	seller := uuid.New()
	p := fx.addProduct(seller, "Tea set", 22, 5)
	o, err := fx.service.BuyProduct(context.Background(), buyer.String(), BuyRequest{
		ProductID:       p.ID.String(),
		Quantity:        1,
		ShippingAddress: shipping(),
	})
	require.NoError(t, err)
	return o, buyer, seller
}

func TestUpdateStatusBySeller(t *testing.T) {
	fx := newCheckoutFixture()
	o, _, seller := placeOrder(t, fx)

	updated, err := fx.service.UpdateStatus(context.Background(), seller.String(), false, o.ID.String(), UpdateStatusRequest{
		OrderStatus: "confirmed",
		Note:        "Packing started",
		Location:    "Warehouse 3",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, updated.OrderStatus)

	stored, err := fx.repo.GetOrderByID(context.Background(), o.ID.String())
	require.NoError(t, err)
	require.Len(t, stored.StatusHistory, 2)
	assert.Equal(t, StatusConfirmed, stored.StatusHistory[1].Status)
	assert.Equal(t, "Warehouse 3", stored.StatusHistory[1].Location)
}

func TestUpdateStatusBuyerCannotAdvance(t *testing.T) {
	fx := newCheckoutFixture()
	o, buyer, _ := placeOrder(t, fx)

	_, err := fx.service.UpdateStatus(context.Background(), buyer.String(), false, o.ID.String(), UpdateStatusRequest{
		OrderStatus: "confirmed",
	})
	var authErr *AuthorizationError
	require.ErrorAs(t, err, &authErr)

	stored, _ := fx.repo.GetOrderByID(context.Background(), o.ID.String())
	assert.Equal(t, StatusPending, stored.OrderStatus)
	assert.Len(t, stored.StatusHistory, 1)
}

func TestUpdateStatusBuyerCanCancel(t *testing.T) {
	fx := newCheckoutFixture()
	o, buyer, _ := placeOrder(t, fx)

	updated, err := fx.service.UpdateStatus(context.Background(), buyer.String(), false, o.ID.String(), UpdateStatusRequest{
		OrderStatus: "cancelled",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, updated.OrderStatus)
}

func TestUpdateStatusStrangerRejected(t *testing.T) {
	fx := newCheckoutFixture()
	o, _, _ := placeOrder(t, fx)

	_, err := fx.service.UpdateStatus(context.Background(), uuid.New().String(), false, o.ID.String(), UpdateStatusRequest{
		OrderStatus: "confirmed",
	})
	var authErr *AuthorizationError
	require.ErrorAs(t, err, &authErr)
}

func TestUpdateStatusPaymentOnly(t *testing.T) {
	fx := newCheckoutFixture()
	o, _, seller := placeOrder(t, fx)

	updated, err := fx.service.UpdateStatus(context.Background(), seller.String(), false, o.ID.String(), UpdateStatusRequest{
		PaymentStatus: "completed",
	})
	require.NoError(t, err)
	assert.Equal(t, PaymentCompleted, updated.PaymentStatus)

	// Payment-only updates do not grow the order status history.
	stored, _ := fx.repo.GetOrderByID(context.Background(), o.ID.String())
	assert.Len(t, stored.StatusHistory, 1)
}

func TestUpdateStatusRequiresAField(t *testing.T) {
	fx := newCheckoutFixture()
	o, _, seller := placeOrder(t, fx)

	_, err := fx.service.UpdateStatus(context.Background(), seller.String(), false, o.ID.String(), UpdateStatusRequest{})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

// ── tracking ─────────────────────────────────────────────────────────────────

func TestTrackReturnsPublicProjection(t *testing.T) {
	fx := newCheckoutFixture()
	o, _, _ := placeOrder(t, fx)

	view, err := fx.service.Track(context.Background(), o.TrackingNumber)
	require.NoError(t, err)

	assert.Equal(t, o.TrackingNumber, view.TrackingNumber)
	assert.Equal(t, "Tea set", view.ProductName)
	assert.Equal(t, StatusPending, view.OrderStatus)
	require.Len(t, view.StatusHistory, 1)

	// The projection must not leak party identifiers or addresses.
	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), o.BuyerID.String())
	assert.NotContains(t, string(raw), o.SellerID.String())
	assert.NotContains(t, string(raw), "Mombasa")
}

func TestTrackUnknownNumber(t *testing.T) {
	fx := newCheckoutFixture()
	_, err := fx.service.Track(context.Background(), "TRK000000XXXX")
	require.ErrorIs(t, err, ErrNotFound)
}
