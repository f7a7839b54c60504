package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/investrack/portfolio-service/internal/models"
	"github.com/investrack/portfolio-service/internal/quotes"
)

// fakeLedger implements LedgerStore over a fixed transaction slice
type fakeLedger struct {
	txs []*models.Transaction
}

func (f *fakeLedger) GetTransactionsByUser(userID string) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, tx := range f.txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	models.SortChronological(out)
	return out, nil
}

// fakeHoldings implements HoldingsStore over a fixed holdings slice
type fakeHoldings struct {
	holdings []*models.Holding
}

func (f *fakeHoldings) GetHoldingsByUser(userID string) ([]*models.Holding, error) {
	var out []*models.Holding
	for _, h := range f.holdings {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out, nil
}

// fakeProvider serves canned quotes, with optional per-symbol failures and delays
type fakeProvider struct {
	prices map[string]decimal.Decimal
	errs   map[string]error
	delays map[string]time.Duration
}

func (f *fakeProvider) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if delay, ok := f.delays[symbol]; ok {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return decimal.Zero, ctx.Err()
		}
	}
	if err, ok := f.errs[symbol]; ok {
		return decimal.Zero, err
	}
	if price, ok := f.prices[symbol]; ok {
		return price, nil
	}
	return decimal.Zero, quotes.ErrQuoteUnavailable
}

func ledgerTxn(id int, user, symbol, kind string, qty, price float64, at time.Time) *models.Transaction {
	return &models.Transaction{
		ID:         id,
		UserID:     user,
		Symbol:     symbol,
		Instrument: symbol,
		Kind:       kind,
		Quantity:   decimal.NewFromFloat(qty),
		Price:      decimal.NewFromFloat(price),
		ExecutedAt: at,
	}
}
