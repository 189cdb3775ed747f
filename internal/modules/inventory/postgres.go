package inventory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a ledger backed by the products table.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) GetStock(ctx context.Context, productID string) (*Availability, error) {
	uid, err := uuid.Parse(productID)
	if err != nil {
		return nil, ErrProductNotFound
	}
	a := &Availability{}
	err = r.db.QueryRowContext(ctx,
		`SELECT id, seller_id, stock FROM products WHERE id=$1`, uid).
		Scan(&a.ProductID, &a.SellerID, &a.CurrentStock)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Available = a.CurrentStock > 0
	return a, nil
}

// ReserveStock relies on the WHERE clause for correctness: the decrement only
// happens when the predicate stock >= qty holds at update time, so two
// concurrent reservations for the last unit can never both succeed.
func (r *postgresRepo) ReserveStock(ctx context.Context, productID string, qty int) (int, error) {
	uid, err := uuid.Parse(productID)
	if err != nil {
		return 0, ErrProductNotFound
	}
	var newStock int
	err = r.db.QueryRowContext(ctx, `
		UPDATE products
		SET stock = stock - $2,
		    status = CASE WHEN stock - $2 = 0 THEN 'sold' ELSE status END,
		    updated_at = NOW()
		WHERE id = $1 AND stock >= $2
		RETURNING stock`, uid, qty).Scan(&newStock)
	if err == sql.ErrNoRows {
		// Predicate failed: distinguish a missing product from short stock.
		var stock int
		if err := r.db.QueryRowContext(ctx,
			`SELECT stock FROM products WHERE id=$1`, uid).Scan(&stock); err != nil {
			if err == sql.ErrNoRows {
				return 0, ErrProductNotFound
			}
			return 0, err
		}
		return 0, &InsufficientStockError{ProductID: productID, Available: stock, Requested: qty}
	}
	if err != nil {
		return 0, fmt.Errorf("reserve stock: %w", err)
	}
	return newStock, nil
}

func (r *postgresRepo) ReleaseStock(ctx context.Context, productID string, qty int) error {
	uid, err := uuid.Parse(productID)
	if err != nil {
		return ErrProductNotFound
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET stock = stock + $2,
		    status = CASE WHEN status = 'sold' THEN 'available' ELSE status END,
		    updated_at = NOW()
		WHERE id = $1`, uid, qty)
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}
