package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction kind constants
const (
	TxnKindBuy     = "BUY"
	TxnKindSell    = "SELL"
	TxnKindDeposit = "DEPOSIT"
)

// Transaction is a single immutable ledger entry. The serial ID doubles as
// the ledger sequence number and breaks ordering ties between transactions
// that share an execution timestamp.
type Transaction struct {
	ID         int             `json:"id"`
	UserID     string          `json:"user_id"`
	OrderID    string          `json:"order_id,omitempty"`
	Source     string          `json:"source,omitempty"`
	Symbol     string          `json:"symbol"`
	Instrument string          `json:"instrument"`
	Kind       string          `json:"kind"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	ExecutedAt time.Time       `json:"executed_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

// SortChronological orders transactions by (executed_at, id). Replay results
// must be reproducible for ledgers where several trades share a timestamp,
// so wall-clock order alone is not enough.
func SortChronological(txs []*Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].ExecutedAt.Equal(txs[j].ExecutedAt) {
			return txs[i].ID < txs[j].ID
		}
		return txs[i].ExecutedAt.Before(txs[j].ExecutedAt)
	})
}

// GroupBySymbol splits a ledger into per-instrument slices, preserving the
// relative order of each instrument's transactions.
func GroupBySymbol(txs []*Transaction) map[string][]*Transaction {
	grouped := make(map[string][]*Transaction)
	for _, tx := range txs {
		grouped[tx.Symbol] = append(grouped[tx.Symbol], tx)
	}
	return grouped
}
