package payment

import (
	"context"
	"log"
	"time"
)

const initiateTimeout = 10 * time.Second

// Dispatcher starts settlement with the requested provider without blocking
// the checkout that triggered it. Failures are logged and swallowed; a
// completed checkout never fails because a provider was down.
type Dispatcher struct {
	gateways GatewayRegistry
	currency string
}

func NewDispatcher(gateways GatewayRegistry, currency string) *Dispatcher {
	return &Dispatcher{gateways: gateways, currency: currency}
}

func (d *Dispatcher) Initiate(ctx context.Context, method string, amount float64, orderRef string) {
	gateway, ok := d.gateways[Provider(method)]
	if !ok {
		log.Printf("payment: unknown provider %q for order %s", method, orderRef)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), initiateTimeout)
		defer cancel()
		resp, err := gateway.Initiate(ctx, &InitiateRequest{
			Amount:   amount,
			Currency: d.currency,
			OrderRef: orderRef,
		})
		if err != nil {
			log.Printf("payment: initiate %s for order %s: %v", method, orderRef, err)
			return
		}
		log.Printf("payment: order %s provider_ref=%s status=%s", orderRef, resp.ProviderRef, resp.ProviderStatus)
	}()
}
