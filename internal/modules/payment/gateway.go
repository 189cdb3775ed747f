package payment

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Provider names a payment method a checkout can request.
type Provider string

const (
	ProviderCard        Provider = "card"
	ProviderMobileMoney Provider = "mobile_money"
	ProviderCOD         Provider = "cod"
)

// InitiateRequest is the provider-agnostic settlement request.
type InitiateRequest struct {
	Amount   float64
	Currency string
	OrderRef string
}

// InitiateResponse is what a provider returns for a settlement attempt.
type InitiateResponse struct {
	ProviderRef    string
	ProviderStatus string
	Message        string
}

// Gateway is the interface every payment provider adapter implements.
type Gateway interface {
	Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResponse, error)
}

// GatewayRegistry maps provider names to their adapters.
type GatewayRegistry map[Provider]Gateway

// ── Stub adapters ────────────────────────────────────────────────────────────
// Settlement is an external collaborator: these stubs simulate the async
// accept flow until real provider credentials are wired in.

type cardGateway struct {
	apiKey  string
	baseURL string
}

func NewCardGateway(apiKey, baseURL string) Gateway {
	return &cardGateway{apiKey: apiKey, baseURL: baseURL}
}

func (g *cardGateway) Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResponse, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be greater than 0")
	}
	ref := fmt.Sprintf("CARD-%s-%04d", time.Now().Format("20060102150405"), rand.Intn(10000))
	return &InitiateResponse{
		ProviderRef:    ref,
		ProviderStatus: "PENDING",
		Message:        fmt.Sprintf("Card charge of %.2f initiated for order %s", req.Amount, req.OrderRef),
	}, nil
}

type mobileMoneyGateway struct {
	apiKey    string
	apiSecret string
	baseURL   string
}

func NewMobileMoneyGateway(apiKey, apiSecret, baseURL string) Gateway {
	return &mobileMoneyGateway{apiKey: apiKey, apiSecret: apiSecret, baseURL: baseURL}
}

func (g *mobileMoneyGateway) Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResponse, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be greater than 0")
	}
	ref := fmt.Sprintf("MOMO-%s-%04d", time.Now().Format("20060102150405"), rand.Intn(10000))
	return &InitiateResponse{
		ProviderRef:    ref,
		ProviderStatus: "PENDING",
		Message:        "Payment request sent. Awaiting customer approval.",
	}, nil
}

type codGateway struct{}

// NewCODGateway returns the cash-on-delivery adapter; settlement happens at
// the door, so initiation always succeeds.
func NewCODGateway() Gateway { return &codGateway{} }

func (g *codGateway) Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResponse, error) {
	return &InitiateResponse{
		ProviderRef:    fmt.Sprintf("COD-%s", req.OrderRef),
		ProviderStatus: "PENDING",
		Message:        "Payment collected on delivery",
	}, nil
}
