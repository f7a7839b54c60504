package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investrack/portfolio-service/internal/models"
	"github.com/investrack/portfolio-service/internal/trading"
)

// MockExecutor records orders passed through the consumer
type MockExecutor struct {
	orders []trading.TradeOrder
	err    error
}

func (m *MockExecutor) Execute(_ context.Context, ord trading.TradeOrder) (*models.Transaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.orders = append(m.orders, ord)
	return &models.Transaction{
		ID:       len(m.orders),
		UserID:   ord.UserID,
		OrderID:  ord.OrderID,
		Symbol:   ord.Symbol,
		Kind:     ord.Kind,
		Quantity: ord.Quantity,
		Price:    ord.Price,
	}, nil
}

// MockLedger answers duplicate checks from a fixed set
type MockLedger struct {
	seen map[string]bool
}

func NewMockLedger() *MockLedger {
	return &MockLedger{seen: make(map[string]bool)}
}

func (m *MockLedger) TransactionExistsByOrderID(orderID, source string) (bool, error) {
	return m.seen[orderID+":"+source], nil
}

func tradeMessage(t *testing.T, event models.TradeEvent) kafka.Message {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Key: []byte(event.Data.Symbol), Value: data}
}

func testTradeEvent(orderID, symbol, side, qty, price string) models.TradeEvent {
	executedAt := "2026-03-10T09:30:00Z"
	return models.TradeEvent{
		EventType: models.EventTypeTradeExecuted,
		Source:    "zerodha",
		Timestamp: time.Now(),
		Data: models.TradeEventData{
			OrderID:    orderID,
			UserID:     "u1",
			Symbol:     symbol,
			Side:       side,
			Quantity:   qty,
			Price:      price,
			ExecutedAt: &executedAt,
		},
	}
}

func TestProcessMessageExecutesTrade(t *testing.T) {
	executor := &MockExecutor{}
	consumer := &Consumer{executor: executor, ledger: NewMockLedger()}

	msg := tradeMessage(t, testTradeEvent("order-1", "AAPL", "buy", "10", "150.00"))
	err := consumer.processMessage(context.Background(), msg)
	require.NoError(t, err)

	require.Len(t, executor.orders, 1)
	ord := executor.orders[0]
	assert.Equal(t, "u1", ord.UserID)
	assert.Equal(t, "AAPL", ord.Symbol)
	assert.Equal(t, models.TxnKindBuy, ord.Kind, "side is uppercased")
	assert.Equal(t, "zerodha", ord.Source)
	assert.True(t, decimal.NewFromInt(10).Equal(ord.Quantity))
	assert.True(t, decimal.RequireFromString("150.00").Equal(ord.Price))
	assert.Equal(t, time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC), ord.ExecutedAt.UTC())
}

func TestProcessMessageSkipsDuplicate(t *testing.T) {
	executor := &MockExecutor{}
	ledger := NewMockLedger()
	ledger.seen["order-1:zerodha"] = true
	consumer := &Consumer{executor: executor, ledger: ledger}

	msg := tradeMessage(t, testTradeEvent("order-1", "AAPL", "BUY", "10", "150.00"))
	err := consumer.processMessage(context.Background(), msg)
	require.NoError(t, err)

	assert.Empty(t, executor.orders, "duplicate delivery must not reach the executor")
}

func TestProcessMessageIgnoresOtherEventTypes(t *testing.T) {
	executor := &MockExecutor{}
	consumer := &Consumer{executor: executor, ledger: NewMockLedger()}

	event := testTradeEvent("order-1", "AAPL", "BUY", "10", "150.00")
	event.EventType = "PRICE_TICK"
	err := consumer.processMessage(context.Background(), tradeMessage(t, event))
	require.NoError(t, err)

	assert.Empty(t, executor.orders)
}

func TestProcessMessageRejectsInvalidSide(t *testing.T) {
	executor := &MockExecutor{}
	consumer := &Consumer{executor: executor, ledger: NewMockLedger()}

	msg := tradeMessage(t, testTradeEvent("order-1", "AAPL", "SHORT", "10", "150.00"))
	err := consumer.processMessage(context.Background(), msg)
	assert.Error(t, err)
	assert.Empty(t, executor.orders)
}

func TestProcessMessageRejectsMalformedPayload(t *testing.T) {
	executor := &MockExecutor{}
	consumer := &Consumer{executor: executor, ledger: NewMockLedger()}

	err := consumer.processMessage(context.Background(), kafka.Message{Value: []byte("{not json")})
	assert.Error(t, err)
}

func TestConvertEventTimestampFallbacks(t *testing.T) {
	consumer := &Consumer{}

	t.Run("timestamp without timezone", func(t *testing.T) {
		event := testTradeEvent("order-1", "AAPL", "BUY", "1", "1")
		local := "2026-03-10T09:30:00"
		event.Data.ExecutedAt = &local

		ord, err := consumer.convertEvent(event)
		require.NoError(t, err)
		assert.Equal(t, 2026, ord.ExecutedAt.Year())
		assert.Equal(t, time.March, ord.ExecutedAt.Month())
	})

	t.Run("missing timestamp defaults to now", func(t *testing.T) {
		event := testTradeEvent("order-1", "AAPL", "BUY", "1", "1")
		event.Data.ExecutedAt = nil

		before := time.Now()
		ord, err := consumer.convertEvent(event)
		require.NoError(t, err)
		assert.False(t, ord.ExecutedAt.Before(before))
	})

	t.Run("invalid quantity rejected", func(t *testing.T) {
		event := testTradeEvent("order-1", "AAPL", "BUY", "ten", "1")
		_, err := consumer.convertEvent(event)
		assert.Error(t, err)
	})

	t.Run("deposit without price", func(t *testing.T) {
		event := testTradeEvent("order-1", "", "DEPOSIT", "50000", "")
		event.Data.Instrument = "SBI Fixed Deposit"

		ord, err := consumer.convertEvent(event)
		require.NoError(t, err)
		assert.Equal(t, models.TxnKindDeposit, ord.Kind)
		assert.Equal(t, "SBI Fixed Deposit", ord.Instrument)
		assert.True(t, ord.Price.IsZero())
	})
}
