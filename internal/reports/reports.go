// Package reports derives the investor-facing statements from the ledger and
// holdings stores: realized P&L, inflation-adjusted real returns, the
// composite investor score, and live-valued holdings.
//
// Every report is a pure function over a snapshot taken at request time. The
// three realized-figure consumers all replay the ledger through the one
// engine.MatchLots implementation, so they cannot disagree on what was realized.
package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/investrack/portfolio-service/internal/models"
)

// LedgerStore is the ordered, read-only transaction history.
type LedgerStore interface {
	GetTransactionsByUser(userID string) ([]*models.Transaction, error)
}

// HoldingsStore is the current holdings snapshot.
type HoldingsStore interface {
	GetHoldingsByUser(userID string) ([]*models.Holding, error)
}

// round2 rounds a figure for presentation. Applied only at report boundaries,
// never mid-computation.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// sortedSymbols returns the instrument keys of a grouped ledger in a fixed
// order so report output is deterministic.
func sortedSymbols(grouped map[string][]*models.Transaction) []string {
	symbols := make([]string, 0, len(grouped))
	for s := range grouped {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// instrumentName picks the display name for a group of transactions.
func instrumentName(txs []*models.Transaction) string {
	for _, tx := range txs {
		if tx.Instrument != "" {
			return tx.Instrument
		}
	}
	if len(txs) > 0 {
		return txs[0].Symbol
	}
	return ""
}

// hasSells reports whether the group contains at least one sell transaction.
func hasSells(txs []*models.Transaction) bool {
	for _, tx := range txs {
		if tx.Kind == models.TxnKindSell {
			return true
		}
	}
	return false
}
