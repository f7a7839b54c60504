package engine

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/investrack/portfolio-service/internal/models"
)

// HoldingsStore is the mutable holdings store the book operates on.
// GetHolding reports a missing row with models.ErrNotFound.
type HoldingsStore interface {
	GetHolding(userID, symbol string) (*models.Holding, error)
	CreateHolding(h *models.Holding) error
	UpdateHolding(h *models.Holding) error
	DeleteHolding(id int) error
}

// HoldingsBook maintains the aggregated position per (user, instrument):
// quantity plus weighted-average cost. Mutations on the same position are
// serialized with a per-key mutex so the average-cost invariant holds under
// concurrent trades; positions for different keys proceed independently.
type HoldingsBook struct {
	store HoldingsStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewHoldingsBook creates a HoldingsBook over the given store.
func NewHoldingsBook(store HoldingsStore) *HoldingsBook {
	return &HoldingsBook{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

func (b *HoldingsBook) lockFor(userID, symbol string) *sync.Mutex {
	key := userID + "|" + symbol
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.locks[key]
	if !ok {
		l = &sync.Mutex{}
		b.locks[key] = l
	}
	return l
}

// RecordBuy creates the holding on first purchase, otherwise folds the new
// shares into the quantity-weighted average cost:
//
//	new_avg = (old_qty*old_avg + qty*price) / (old_qty + qty)
func (b *HoldingsBook) RecordBuy(userID, symbol, instrument string, qty, price decimal.Decimal) (*models.Holding, error) {
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, &ValidationError{Msg: "buy quantity must be positive"}
	}
	if price.IsNegative() {
		return nil, &ValidationError{Msg: "buy price must not be negative"}
	}

	symbol = strings.ToUpper(symbol)
	if instrument == "" {
		instrument = symbol
	}

	l := b.lockFor(userID, symbol)
	l.Lock()
	defer l.Unlock()

	holding, err := b.store.GetHolding(userID, symbol)
	if errors.Is(err, models.ErrNotFound) {
		holding = &models.Holding{
			UserID:     userID,
			Symbol:     symbol,
			Instrument: instrument,
			Quantity:   qty,
			AvgCost:    price,
			AssetClass: models.AssetClassEquity,
		}
		if err := b.store.CreateHolding(holding); err != nil {
			return nil, fmt.Errorf("failed to create holding: %w", err)
		}
		return holding, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load holding: %w", err)
	}

	newQty := holding.Quantity.Add(qty)
	newAvg := holding.Quantity.Mul(holding.AvgCost).Add(qty.Mul(price)).Div(newQty)
	holding.Quantity = newQty
	holding.AvgCost = newAvg
	if err := b.store.UpdateHolding(holding); err != nil {
		return nil, fmt.Errorf("failed to update holding: %w", err)
	}
	return holding, nil
}

// RecordSell decrements the held quantity. Selling more than is held (beyond
// the zero-crossing tolerance) is rejected before any mutation. A sell that
// empties the position deletes the holding row outright: a zero-quantity
// holding has no meaningful average cost.
func (b *HoldingsBook) RecordSell(userID, symbol string, qty decimal.Decimal) (*models.Holding, error) {
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, &ValidationError{Msg: "sell quantity must be positive"}
	}

	symbol = strings.ToUpper(symbol)

	l := b.lockFor(userID, symbol)
	l.Lock()
	defer l.Unlock()

	holding, err := b.store.GetHolding(userID, symbol)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("sell %s: %w", symbol, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load holding: %w", err)
	}

	if qty.GreaterThan(holding.Quantity.Add(quantityEpsilon)) {
		return nil, &InsufficientQuantityError{
			Symbol:    symbol,
			Requested: qty,
			Held:      holding.Quantity,
		}
	}

	remaining := holding.Quantity.Sub(qty)
	if remaining.LessThanOrEqual(quantityEpsilon) {
		if err := b.store.DeleteHolding(holding.ID); err != nil {
			return nil, fmt.Errorf("failed to delete holding: %w", err)
		}
		holding.Quantity = decimal.Zero
		return holding, nil
	}

	holding.Quantity = remaining
	if err := b.store.UpdateHolding(holding); err != nil {
		return nil, fmt.Errorf("failed to update holding: %w", err)
	}
	return holding, nil
}

// RecordDeposit opens a fixed-deposit holding: the principal becomes the
// quantity at a unit cost of 1, so valuation can apply an appreciation factor.
func (b *HoldingsBook) RecordDeposit(userID, instrument string, principal decimal.Decimal) (*models.Holding, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, &ValidationError{Msg: "deposit principal must be positive"}
	}
	if instrument == "" {
		return nil, &ValidationError{Msg: "deposit instrument is required"}
	}

	symbol := strings.ToUpper(strings.ReplaceAll(instrument, " ", "-"))

	l := b.lockFor(userID, symbol)
	l.Lock()
	defer l.Unlock()

	holding := &models.Holding{
		UserID:     userID,
		Symbol:     symbol,
		Instrument: instrument,
		Quantity:   principal,
		AvgCost:    decimal.NewFromInt(1),
		AssetClass: models.AssetClassFD,
	}
	if err := b.store.CreateHolding(holding); err != nil {
		return nil, fmt.Errorf("failed to create fd holding: %w", err)
	}
	return holding, nil
}
