package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL order repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const orderColumns = `id, tracking_number, buyer_id, seller_id, product_id,
	product_name, product_brand, product_category, product_price, product_selling_price, product_images,
	quantity, total_amount, order_status, payment_status,
	shipping_address, buyer_info, order_notes, created_at, updated_at`

// CreateOrder inserts the order and its seeded history inside one transaction,
// so a persisted order always has at least the placement entry.
func (r *postgresRepo) CreateOrder(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	images, err := json.Marshal(o.Product.Images)
	if err != nil {
		return fmt.Errorf("encode snapshot images: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders
		  (id, tracking_number, buyer_id, seller_id, product_id,
		   product_name, product_brand, product_category, product_price, product_selling_price, product_images,
		   quantity, total_amount, order_status, payment_status,
		   shipping_address, buyer_info, order_notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		o.ID, o.TrackingNumber, o.BuyerID, o.SellerID, o.ProductID,
		o.Product.Name, o.Product.Brand, o.Product.Category, o.Product.Price, o.Product.SellingPrice, images,
		o.Quantity, o.TotalAmount, o.OrderStatus, o.PaymentStatus,
		nullableJSON(o.ShippingAddress), nullableJSON(o.BuyerInfo), o.OrderNotes, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, entry := range o.StatusHistory {
		if err := insertHistory(ctx, tx, o.ID, &entry); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *postgresRepo) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_status_history WHERE order_id=$1`, id); err != nil {
		return fmt.Errorf("delete order history: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return tx.Commit()
}

func (r *postgresRepo) GetOrderByID(ctx context.Context, id string) (*Order, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id=$1`, uid))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.StatusHistory, err = r.listHistory(ctx, o.ID)
	return o, err
}

func (r *postgresRepo) GetOrderByTracking(ctx context.Context, trackingNumber string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE tracking_number=$1`, trackingNumber))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.StatusHistory, err = r.listHistory(ctx, o.ID)
	return o, err
}

func (r *postgresRepo) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]*Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE buyer_id=$1 ORDER BY created_at DESC`, buyerID)
}

func (r *postgresRepo) ListOrdersBySeller(ctx context.Context, sellerID string) ([]*Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE seller_id=$1 ORDER BY created_at DESC`, sellerID)
}

// UpdateStatus writes the status columns and the history entry in one
// transaction; a partial write is never observable.
func (r *postgresRepo) UpdateStatus(ctx context.Context, id uuid.UUID, orderStatus OrderStatus, paymentStatus PaymentStatus, entry *StatusEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET order_status=$1, payment_status=$2, updated_at=NOW() WHERE id=$3`,
		orderStatus, paymentStatus, id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}

	if entry != nil {
		if err := insertHistory(ctx, tx, id, entry); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *postgresRepo) TrackingNumberExists(ctx context.Context, trackingNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE tracking_number=$1)`, trackingNumber).Scan(&exists)
	return exists, err
}

// ── helpers ──────────────────────────────────────────────────────────────────

func insertHistory(ctx context.Context, tx *sql.Tx, orderID uuid.UUID, entry *StatusEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO order_status_history (order_id, status, note, location, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		orderID, entry.Status, entry.Note, entry.Location, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*Order, error) {
	o := &Order{}
	var images, shippingAddr, buyerInfo []byte
	err := row.Scan(
		&o.ID, &o.TrackingNumber, &o.BuyerID, &o.SellerID, &o.ProductID,
		&o.Product.Name, &o.Product.Brand, &o.Product.Category, &o.Product.Price, &o.Product.SellingPrice, &images,
		&o.Quantity, &o.TotalAmount, &o.OrderStatus, &o.PaymentStatus,
		&shippingAddr, &buyerInfo, &o.OrderNotes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &o.Product.Images); err != nil {
			return nil, fmt.Errorf("decode snapshot images: %w", err)
		}
	}
	o.ShippingAddress = shippingAddr
	o.BuyerInfo = buyerInfo
	return o, nil
}

func (r *postgresRepo) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range orders {
		if o.StatusHistory, err = r.listHistory(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *postgresRepo) listHistory(ctx context.Context, orderID uuid.UUID) ([]StatusEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, note, location, created_at
		FROM order_status_history WHERE order_id=$1 ORDER BY created_at ASC, id ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []StatusEntry
	for rows.Next() {
		var e StatusEntry
		if err := rows.Scan(&e.Status, &e.Note, &e.Location, &e.Timestamp); err != nil {
			return nil, err
		}
		history = append(history, e)
	}
	return history, rows.Err()
}

func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
