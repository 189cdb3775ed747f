package inventory

import (
	"context"
	"fmt"
)

// Service defines the inventory ledger business logic.
type Service interface {
	// CheckAvailability reports whether qty units of a product can be bought right now.
	CheckAvailability(ctx context.Context, productID string, qty int) (*Availability, error)

	// Reserve atomically decrements stock by qty and returns the new stock level.
	Reserve(ctx context.Context, productID string, qty int) (int, error)

	// Release re-credits stock by qty, undoing a reservation.
	Release(ctx context.Context, productID string, qty int) error
}

type service struct {
	repo Repository
}

// NewService creates a new inventory ledger service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CheckAvailability(ctx context.Context, productID string, qty int) (*Availability, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("quantity must be greater than 0")
	}
	a, err := s.repo.GetStock(ctx, productID)
	if err != nil {
		return nil, err
	}
	a.Available = a.CurrentStock >= qty
	return a, nil
}

func (s *service) Reserve(ctx context.Context, productID string, qty int) (int, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("quantity must be greater than 0")
	}
	return s.repo.ReserveStock(ctx, productID, qty)
}

func (s *service) Release(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be greater than 0")
	}
	return s.repo.ReleaseStock(ctx, productID, qty)
}
