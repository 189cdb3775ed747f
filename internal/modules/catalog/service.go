package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound marks a product id with no listing behind it. Storage failures
// are returned as-is and never collapse into this.
var ErrNotFound = errors.New("product not found")

// Service defines catalog business logic.
type Service interface {
	CreateProduct(ctx context.Context, sellerID string, req CreateProductRequest) (*Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context, category, sellerID string) ([]*Product, error)
	UpdateProduct(ctx context.Context, sellerID, id string, req CreateProductRequest) (*Product, error)
}

type service struct{ repo Repository }

// NewService creates a new catalog service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateProduct(ctx context.Context, sellerID string, req CreateProductRequest) (*Product, error) {
	seller, err := uuid.Parse(sellerID)
	if err != nil {
		return nil, fmt.Errorf("invalid seller id: %w", err)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if req.SellingPrice <= 0 {
		return nil, fmt.Errorf("selling_price must be greater than 0")
	}
	stock := req.Stock
	if stock == 0 && req.CountInStock > 0 {
		// count_in_stock is the legacy field name; accept it on the way in only.
		stock = req.CountInStock
	}
	if stock < 0 {
		return nil, fmt.Errorf("stock cannot be negative")
	}

	status := StatusAvailable
	if stock == 0 {
		status = StatusSold
	}
	p := &Product{
		ID:           uuid.New(),
		SellerID:     seller,
		Name:         req.Name,
		Brand:        req.Brand,
		Category:     req.Category,
		Description:  req.Description,
		Price:        req.Price,
		SellingPrice: req.SellingPrice,
		Images:       req.Images,
		Stock:        stock,
		Status:       status,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to persist product: %w", err)
	}
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListProducts(ctx context.Context, category, sellerID string) ([]*Product, error) {
	return s.repo.List(ctx, category, sellerID)
}

func (s *service) UpdateProduct(ctx context.Context, sellerID, id string, req CreateProductRequest) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("product not found: %w", err)
	}
	if p.SellerID.String() != sellerID {
		return nil, fmt.Errorf("only the listing seller may edit this product")
	}
	p.Name = req.Name
	p.Brand = req.Brand
	p.Category = req.Category
	p.Description = req.Description
	p.Price = req.Price
	p.SellingPrice = req.SellingPrice
	p.Images = req.Images
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
