package reports

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/investrack/portfolio-service/internal/models"
	"github.com/investrack/portfolio-service/internal/quotes"
)

const defaultQuoteTimeout = 3 * time.Second

// HoldingsValuer enriches the holdings snapshot with live valuation:
// current price, total value, and unrealized P&L per holding.
type HoldingsValuer struct {
	holdings     HoldingsStore
	provider     quotes.Provider
	quoteTimeout time.Duration
	workers      int
	fdFactor     decimal.Decimal
}

// NewHoldingsValuer creates a valuer. quoteTimeout bounds each external price
// lookup; fdFactor is the appreciation applied to fixed-deposit principals
// (e.g. 1.07 for a 7% book-up).
func NewHoldingsValuer(holdings HoldingsStore, provider quotes.Provider, quoteTimeout time.Duration, workers int, fdFactor decimal.Decimal) *HoldingsValuer {
	if quoteTimeout <= 0 {
		quoteTimeout = defaultQuoteTimeout
	}
	if workers <= 0 {
		workers = 8
	}
	if fdFactor.LessThanOrEqual(decimal.Zero) {
		fdFactor = decimal.NewFromFloat(1.07)
	}
	return &HoldingsValuer{
		holdings:     holdings,
		provider:     provider,
		quoteTimeout: quoteTimeout,
		workers:      workers,
		fdFactor:     fdFactor,
	}
}

// EnrichHoldings values every holding. Equity prices come from the provider
// with a per-lookup timeout and fall back to the holding's cost basis on any
// failure, so one slow or broken symbol never blocks or breaks the rest.
func (v *HoldingsValuer) EnrichHoldings(ctx context.Context, userID string) ([]*models.EnrichedHolding, error) {
	holdings, err := v.holdings.GetHoldingsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	enriched := make([]*models.EnrichedHolding, len(holdings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)

	for i, h := range holdings {
		i, h := i, h
		g.Go(func() error {
			enriched[i] = v.value(gctx, h)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return enriched, nil
}

func (v *HoldingsValuer) value(ctx context.Context, h *models.Holding) *models.EnrichedHolding {
	price := h.AvgCost

	switch h.AssetClass {
	case models.AssetClassEquity:
		qctx, cancel := context.WithTimeout(ctx, v.quoteTimeout)
		quoted, err := v.provider.Quote(qctx, h.Symbol)
		cancel()
		if err != nil {
			log.Printf("quote for %s unavailable, valuing at cost basis: %v", h.Symbol, err)
		} else {
			price = quoted
		}
	case models.AssetClassFD:
		price = h.AvgCost.Mul(v.fdFactor)
	}

	return &models.EnrichedHolding{
		Holding:      *h,
		CurrentPrice: round2(price),
		TotalValue:   round2(h.Quantity.Mul(price)),
		PnL:          round2(price.Sub(h.AvgCost).Mul(h.Quantity)),
	}
}
