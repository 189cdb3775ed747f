package order

import (
	"context"
	"fmt"
	"math/rand"
)

const (
	trackingPrefix   = "TRK"
	trackingAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	trackingAttempts = 5
)

// TrackingRepository is the slice of order storage the generator needs to
// verify uniqueness before handing out a candidate.
type TrackingRepository interface {
	TrackingNumberExists(ctx context.Context, trackingNumber string) (bool, error)
}

// TrackingGenerator produces globally unique tracking numbers of the form
// TRK + 6 digits + 4 uppercase letters/digits, e.g. TRK482913QX7F.
type TrackingGenerator struct {
	repo TrackingRepository
}

func NewTrackingGenerator(repo TrackingRepository) *TrackingGenerator {
	return &TrackingGenerator{repo: repo}
}

// Next generates a candidate and checks it against existing orders,
// regenerating on collision. The unique constraint on the orders table is
// the backstop for the window between check and insert.
func (g *TrackingGenerator) Next(ctx context.Context) (string, error) {
	for i := 0; i < trackingAttempts; i++ {
		candidate := generateTrackingNumber()
		exists, err := g.repo.TrackingNumberExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check tracking number: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", ErrTrackingExhausted
}

func generateTrackingNumber() string {
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = trackingAlphabet[rand.Intn(len(trackingAlphabet))]
	}
	return fmt.Sprintf("%s%06d%s", trackingPrefix, rand.Intn(1000000), suffix)
}
