package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/investrack/portfolio-service/internal/models"
)

// quantityEpsilon absorbs float drift around zero: a lot whose remaining
// quantity falls at or below it is considered exhausted.
var quantityEpsilon = decimal.NewFromFloat(1e-4)

// Lot is an open acquisition awaiting matching sells. Lots live only for the
// duration of one replay; they are recomputed fresh every time and never stored.
type Lot struct {
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	AcquiredAt time.Time
}

// Match is one matched slice of a sell against the oldest open lot.
type Match struct {
	Quantity   decimal.Decimal
	CostBasis  decimal.Decimal
	SaleValue  decimal.Decimal
	AcquiredAt time.Time
	SoldAt     time.Time
}

// MatchFunc receives every match event produced during a replay.
type MatchFunc func(Match)

// MatchLots replays one instrument's transactions through a FIFO lot queue,
// invoking fn for every matched slice. Buys append a lot at the tail; sells
// consume from the head. Deposits carry no matchable quantity and are skipped.
//
// The input is re-sorted by (executed_at, sequence) so results are
// reproducible byte-for-byte for a given ledger snapshot, even when callers
// hand over an unordered slice.
//
// When a sell exhausts the queue before it is fully matched, the replay
// continues (later transactions are still processed) and MatchLots returns a
// *DataInconsistencyError carrying the accumulated unmatched quantity.
// All delivered match events remain valid in that case.
func MatchLots(txs []*models.Transaction, fn MatchFunc) error {
	ordered := make([]*models.Transaction, len(txs))
	copy(ordered, txs)
	models.SortChronological(ordered)

	var queue []Lot
	unmatched := decimal.Zero
	symbol := ""

	for _, tx := range ordered {
		if symbol == "" {
			symbol = tx.Symbol
		}
		switch tx.Kind {
		case models.TxnKindBuy:
			queue = append(queue, Lot{
				Quantity:   tx.Quantity,
				UnitCost:   tx.Price,
				AcquiredAt: tx.ExecutedAt,
			})
		case models.TxnKindSell:
			remaining := tx.Quantity
			for remaining.GreaterThan(quantityEpsilon) && len(queue) > 0 {
				head := &queue[0]
				matched := decimal.Min(remaining, head.Quantity)
				if fn != nil {
					fn(Match{
						Quantity:   matched,
						CostBasis:  matched.Mul(head.UnitCost),
						SaleValue:  matched.Mul(tx.Price),
						AcquiredAt: head.AcquiredAt,
						SoldAt:     tx.ExecutedAt,
					})
				}
				head.Quantity = head.Quantity.Sub(matched)
				if head.Quantity.LessThanOrEqual(quantityEpsilon) {
					queue = queue[1:]
				}
				remaining = remaining.Sub(matched)
			}
			if remaining.GreaterThan(quantityEpsilon) {
				unmatched = unmatched.Add(remaining)
			}
		}
	}

	if unmatched.GreaterThan(decimal.Zero) {
		return &DataInconsistencyError{Symbol: symbol, Unmatched: unmatched}
	}
	return nil
}

// OpenLots replays the transactions and returns the lots still open at the
// end, oldest first. Useful for inspecting the residual position a ledger implies.
func OpenLots(txs []*models.Transaction) ([]Lot, error) {
	ordered := make([]*models.Transaction, len(txs))
	copy(ordered, txs)
	models.SortChronological(ordered)

	var queue []Lot
	unmatched := decimal.Zero
	symbol := ""

	for _, tx := range ordered {
		if symbol == "" {
			symbol = tx.Symbol
		}
		switch tx.Kind {
		case models.TxnKindBuy:
			queue = append(queue, Lot{Quantity: tx.Quantity, UnitCost: tx.Price, AcquiredAt: tx.ExecutedAt})
		case models.TxnKindSell:
			remaining := tx.Quantity
			for remaining.GreaterThan(quantityEpsilon) && len(queue) > 0 {
				head := &queue[0]
				matched := decimal.Min(remaining, head.Quantity)
				head.Quantity = head.Quantity.Sub(matched)
				if head.Quantity.LessThanOrEqual(quantityEpsilon) {
					queue = queue[1:]
				}
				remaining = remaining.Sub(matched)
			}
			if remaining.GreaterThan(quantityEpsilon) {
				unmatched = unmatched.Add(remaining)
			}
		}
	}

	if unmatched.GreaterThan(decimal.Zero) {
		return queue, &DataInconsistencyError{Symbol: symbol, Unmatched: unmatched}
	}
	return queue, nil
}
