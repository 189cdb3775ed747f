package currency

import "fmt"

// Converter turns an amount in one currency into another for display.
// It is never used to alter the stored amount on an order.
type Converter interface {
	Convert(amount float64, from, to string) (float64, error)
}

type staticConverter struct {
	// rates are expressed against USD.
	rates map[string]float64
}

// NewStaticConverter returns a converter with a fixed rate table. A live
// rate feed can be dropped in behind the same interface later.
func NewStaticConverter() Converter {
	return &staticConverter{rates: map[string]float64{
		"USD": 1.0,
		"EUR": 0.92,
		"GBP": 0.79,
		"ZMW": 27.5,
		"KES": 129.0,
		"NGN": 1540.0,
	}}
}

func (c *staticConverter) Convert(amount float64, from, to string) (float64, error) {
	if from == to {
		return amount, nil
	}
	fromRate, ok := c.rates[from]
	if !ok {
		return 0, fmt.Errorf("unknown currency %q", from)
	}
	toRate, ok := c.rates[to]
	if !ok {
		return 0, fmt.Errorf("unknown currency %q", to)
	}
	return amount / fromRate * toRate, nil
}
