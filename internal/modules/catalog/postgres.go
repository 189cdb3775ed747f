package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL catalog repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, p *Product) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return fmt.Errorf("encode images: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO products
		  (id, seller_id, name, brand, category, description, price, selling_price, images, stock, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		p.ID, p.SellerID, p.Name, p.Brand, p.Category, p.Description,
		p.Price, p.SellingPrice, images, p.Stock, p.Status)
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid product id: %w", err)
	}
	p, err := scanProductRow(r.db.QueryRowContext(ctx, `
		SELECT id, seller_id, name, brand, category, description, price, selling_price,
		       images, stock, status, created_at, updated_at
		FROM products WHERE id=$1`, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	return p, err
}

func (r *postgresRepo) List(ctx context.Context, category, sellerID string) ([]*Product, error) {
	query := `SELECT id, seller_id, name, brand, category, description, price, selling_price,
	                 images, stock, status, created_at, updated_at
	          FROM products WHERE 1=1`
	args := []interface{}{}
	if category != "" {
		args = append(args, category)
		query += fmt.Sprintf(` AND category=$%d`, len(args))
	}
	if sellerID != "" {
		args = append(args, sellerID)
		query += fmt.Sprintf(` AND seller_id=$%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, p *Product) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return fmt.Errorf("encode images: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name=$1, brand=$2, category=$3, description=$4,
		    price=$5, selling_price=$6, images=$7, updated_at=NOW()
		WHERE id=$8`,
		p.Name, p.Brand, p.Category, p.Description,
		p.Price, p.SellingPrice, images, p.ID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("product %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProductRow(row rowScanner) (*Product, error) {
	p := &Product{}
	var images []byte
	err := row.Scan(&p.ID, &p.SellerID, &p.Name, &p.Brand, &p.Category, &p.Description,
		&p.Price, &p.SellingPrice, &images, &p.Stock, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return nil, fmt.Errorf("decode images: %w", err)
		}
	}
	return p, nil
}
