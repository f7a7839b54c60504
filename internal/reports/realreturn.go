package reports

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/investrack/portfolio-service/internal/engine"
	"github.com/investrack/portfolio-service/internal/models"
)

const daysPerYear = 365.25

// RealReturnCalculator produces realized returns discounted by inflation
// accrued over each matched lot's holding period. The inflation rate is the
// single configured annual rate shared across the whole system.
type RealReturnCalculator struct {
	ledger        LedgerStore
	inflationRate float64
	workers       int
}

// NewRealReturnCalculator creates a calculator using the given annual
// inflation rate (e.g. 0.06 for 6%).
func NewRealReturnCalculator(ledger LedgerStore, inflationRate float64, workers int) *RealReturnCalculator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &RealReturnCalculator{ledger: ledger, inflationRate: inflationRate, workers: workers}
}

// discountFor returns (1+rate)^years for the holding period between
// acquisition and sale. Same-instant (or clock-skewed negative) periods
// discount by exactly 1.
func (c *RealReturnCalculator) discountFor(m engine.Match) decimal.Decimal {
	days := m.SoldAt.Sub(m.AcquiredAt).Hours() / 24
	years := math.Max(0, days) / daysPerYear
	if years == 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromFloat(math.Pow(1+c.inflationRate, years))
}

// Build replays the ledger per instrument and aggregates, for every match:
//
//	nominal     = sale value − cost basis
//	real        = sale value / discount − cost basis
//	adjustment  = nominal − real
//
// Per instrument the report carries Σnominal, Σadjustment, and
// real = Σnominal − Σadjustment. Instruments without sells are omitted.
func (c *RealReturnCalculator) Build(ctx context.Context, userID string) ([]*models.RealReturnEntry, error) {
	txs, err := c.ledger.GetTransactionsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	grouped := models.GroupBySymbol(txs)
	symbols := sortedSymbols(grouped)

	entries := make([]*models.RealReturnEntry, len(symbols))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			group := grouped[symbol]
			if !hasSells(group) {
				return nil
			}

			nominal := decimal.Zero
			adjustment := decimal.Zero
			err := engine.MatchLots(group, func(m engine.Match) {
				matchNominal := m.SaleValue.Sub(m.CostBasis)
				adjustedSale := m.SaleValue.Div(c.discountFor(m))
				matchReal := adjustedSale.Sub(m.CostBasis)

				nominal = nominal.Add(matchNominal)
				adjustment = adjustment.Add(matchNominal.Sub(matchReal))
			})

			var inconsistency *engine.DataInconsistencyError
			if err != nil && !errors.As(err, &inconsistency) {
				return fmt.Errorf("replay %s: %w", symbol, err)
			}

			entry := &models.RealReturnEntry{
				Instrument:          instrumentName(group),
				NominalPnL:          round2(nominal),
				InflationAdjustment: round2(adjustment),
				RealPnL:             round2(nominal.Sub(adjustment)),
			}
			if inconsistency != nil {
				entry.Inconsistent = true
				entry.UnmatchedQuantity = inconsistency.Unmatched
			}
			entries[i] = entry
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := make([]*models.RealReturnEntry, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			report = append(report, e)
		}
	}
	return report, nil
}
