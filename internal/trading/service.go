// Package trading is the trade-execution entry point: it applies an order to
// the holdings book, appends the transaction to the ledger, and publishes a
// ledger event. It records already-decided trades; it does not decide when a
// trade executes or whether it is legal in the market.
package trading

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/investrack/portfolio-service/internal/engine"
	"github.com/investrack/portfolio-service/internal/models"
)

// LedgerStore appends executed trades to the transaction history.
type LedgerStore interface {
	CreateTransaction(t *models.Transaction) error
}

// EventPublisher announces recorded trades downstream.
type EventPublisher interface {
	PublishTradeRecorded(ctx context.Context, tx *models.Transaction) error
}

// TradeOrder is an already-executed trade to be recorded. For deposits,
// Quantity carries the principal amount.
type TradeOrder struct {
	UserID     string
	Symbol     string
	Instrument string
	OrderID    string
	Source     string
	Kind       string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	ExecutedAt time.Time
}

// Service coordinates holdings mutation, ledger append, and event publishing.
type Service struct {
	book      *engine.HoldingsBook
	ledger    LedgerStore
	publisher EventPublisher
}

// NewService creates a trade execution service. publisher may be nil when no
// event stream is wired.
func NewService(book *engine.HoldingsBook, ledger LedgerStore, publisher EventPublisher) *Service {
	return &Service{book: book, ledger: ledger, publisher: publisher}
}

// Execute applies the order. Validation and insufficient-quantity failures
// reject the order atomically: neither the holdings book nor the ledger is
// touched. Event publishing is best-effort; a publish failure does not undo
// a recorded trade.
func (s *Service) Execute(ctx context.Context, ord TradeOrder) (*models.Transaction, error) {
	var (
		holding *models.Holding
		err     error
	)

	switch ord.Kind {
	case models.TxnKindBuy:
		holding, err = s.book.RecordBuy(ord.UserID, ord.Symbol, ord.Instrument, ord.Quantity, ord.Price)
	case models.TxnKindSell:
		if ord.Price.IsNegative() {
			return nil, &engine.ValidationError{Msg: "sell price must not be negative"}
		}
		holding, err = s.book.RecordSell(ord.UserID, ord.Symbol, ord.Quantity)
	case models.TxnKindDeposit:
		holding, err = s.book.RecordDeposit(ord.UserID, ord.Instrument, ord.Quantity)
	default:
		return nil, &engine.ValidationError{Msg: fmt.Sprintf("unknown trade kind %q", ord.Kind)}
	}
	if err != nil {
		return nil, err
	}

	executedAt := ord.ExecutedAt
	if executedAt.IsZero() {
		executedAt = time.Now()
	}
	orderID := ord.OrderID
	if orderID == "" {
		orderID = uuid.NewString()
	}
	source := ord.Source
	if source == "" {
		source = "manual"
	}

	tx := &models.Transaction{
		UserID:     ord.UserID,
		OrderID:    orderID,
		Source:     source,
		Symbol:     holding.Symbol,
		Instrument: holding.Instrument,
		Kind:       ord.Kind,
		Quantity:   ord.Quantity,
		Price:      ord.Price,
		ExecutedAt: executedAt,
	}
	if ord.Kind == models.TxnKindDeposit {
		// The ledger records a deposit as one unit at the principal price,
		// mirroring how the FD holding is valued.
		tx.Quantity = decimal.NewFromInt(1)
		tx.Price = ord.Quantity
	}

	if err := s.ledger.CreateTransaction(tx); err != nil {
		// The holdings book has already been mutated at this point. There
		// is no rollback path across the two stores, so the divergence is
		// logged for operators to reconcile against the holdings row.
		log.Printf("ledger append failed after holdings update: user=%s symbol=%s kind=%s qty=%s: %v",
			tx.UserID, tx.Symbol, tx.Kind, tx.Quantity, err)
		return nil, fmt.Errorf("failed to append transaction: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishTradeRecorded(ctx, tx); err != nil {
			log.Printf("failed to publish trade recorded event for %s: %v", tx.Symbol, err)
		}
	}

	return tx, nil
}
