package reports

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/investrack/portfolio-service/internal/engine"
	"github.com/investrack/portfolio-service/internal/models"
)

// PnLReportBuilder produces the realized profit-and-loss statement: one entry
// per instrument that has recorded sales.
type PnLReportBuilder struct {
	ledger  LedgerStore
	workers int
}

// NewPnLReportBuilder creates a builder. workers bounds the cross-instrument
// fan-out; replay within one instrument is always sequential.
func NewPnLReportBuilder(ledger LedgerStore, workers int) *PnLReportBuilder {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &PnLReportBuilder{ledger: ledger, workers: workers}
}

// Build replays the user's full ledger per instrument and aggregates every
// match event into sale value and cost of sold shares. Instruments with no
// sale value yet are omitted. An oversold ledger flags the affected entry
// only; the rest of the report is unaffected.
func (b *PnLReportBuilder) Build(ctx context.Context, userID string) ([]*models.PnLEntry, error) {
	txs, err := b.ledger.GetTransactionsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}

	grouped := models.GroupBySymbol(txs)
	symbols := sortedSymbols(grouped)

	entries := make([]*models.PnLEntry, len(symbols))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			group := grouped[symbol]
			saleValue := decimal.Zero
			costBasis := decimal.Zero
			err := engine.MatchLots(group, func(m engine.Match) {
				saleValue = saleValue.Add(m.SaleValue)
				costBasis = costBasis.Add(m.CostBasis)
			})

			var inconsistency *engine.DataInconsistencyError
			if err != nil && !errors.As(err, &inconsistency) {
				return fmt.Errorf("replay %s: %w", symbol, err)
			}

			if saleValue.IsZero() && inconsistency == nil {
				return nil
			}

			entry := &models.PnLEntry{
				Instrument:     instrumentName(group),
				TotalSaleValue: round2(saleValue),
				CostBasis:      round2(costBasis),
				RealizedPnL:    round2(saleValue.Sub(costBasis)),
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

	report := make([]*models.PnLEntry, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			report = append(report, e)
		}
	}
	return report, nil
}
