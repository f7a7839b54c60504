// Package quotes supplies live market prices for unrealized valuation.
// Quote failures are expected operational noise: callers fall back to cost
// basis locally and never propagate them.
package quotes

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrQuoteUnavailable indicates the provider could not produce a usable price
// for the symbol (unknown symbol, upstream error, or a non-positive quote).
var ErrQuoteUnavailable = errors.New("quote unavailable")

// Provider returns the latest price for a symbol. Implementations honor the
// context deadline; a slow upstream must not hold up the caller past it.
type Provider interface {
	Quote(ctx context.Context, symbol string) (decimal.Decimal, error)
}
