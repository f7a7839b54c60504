package database

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investrack/portfolio-service/internal/models"
)

func TestTransactionsRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	baseTime := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	newTxn := func(userID, orderID, symbol, kind string, qty, price float64, executedAt time.Time) *models.Transaction {
		return &models.Transaction{
			UserID:     userID,
			OrderID:    orderID,
			Source:     "manual",
			Symbol:     symbol,
			Instrument: symbol,
			Kind:       kind,
			Quantity:   decimal.NewFromFloat(qty),
			Price:      decimal.NewFromFloat(price),
			ExecutedAt: executedAt,
		}
	}

	t.Run("CreateTransaction assigns id and created_at", func(t *testing.T) {
		testDB.TruncateAll(t)

		tx := newTxn("u1", "order-1", "AAPL", models.TxnKindBuy, 10, 150.00, baseTime)
		err := testDB.CreateTransaction(tx)
		require.NoError(t, err)
		assert.NotZero(t, tx.ID)
		assert.False(t, tx.CreatedAt.IsZero())
	})

	t.Run("GetTransactionsByUser returns replay order", func(t *testing.T) {
		testDB.TruncateAll(t)

		// Insert out of chronological order; the second and third share a timestamp
		require.NoError(t, testDB.CreateTransaction(newTxn("u1", "order-3", "AAPL", models.TxnKindSell, 5, 170.00, baseTime.Add(48*time.Hour))))
		require.NoError(t, testDB.CreateTransaction(newTxn("u1", "order-1", "AAPL", models.TxnKindBuy, 10, 150.00, baseTime)))
		require.NoError(t, testDB.CreateTransaction(newTxn("u1", "order-2", "MSFT", models.TxnKindBuy, 3, 400.00, baseTime)))

		txs, err := testDB.GetTransactionsByUser("u1")
		require.NoError(t, err)
		require.Len(t, txs, 3)

		// Replay order is (executed_at, id): the two rows sharing a
		// timestamp fall back to insertion order.
		assert.Equal(t, "order-1", txs[0].OrderID)
		assert.Equal(t, "order-2", txs[1].OrderID)
		assert.Equal(t, "order-3", txs[2].OrderID)
		assert.True(t, txs[0].ID < txs[1].ID, "timestamp tie broken by serial id")
	})

	t.Run("GetTransactionsByUser isolates users", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.CreateTransaction(newTxn("u1", "order-1", "AAPL", models.TxnKindBuy, 10, 150.00, baseTime)))
		require.NoError(t, testDB.CreateTransaction(newTxn("u2", "order-2", "AAPL", models.TxnKindBuy, 20, 150.00, baseTime)))

		txs, err := testDB.GetTransactionsByUser("u1")
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, "u1", txs[0].UserID)
	})

	t.Run("GetRecentTransactionsByUser returns newest first", func(t *testing.T) {
		testDB.TruncateAll(t)

		for i := 0; i < 5; i++ {
			tx := newTxn("u1", "", "AAPL", models.TxnKindBuy, 1, 100.00, baseTime.Add(time.Duration(i)*time.Hour))
			require.NoError(t, testDB.CreateTransaction(tx))
		}

		txs, err := testDB.GetRecentTransactionsByUser("u1", 3)
		require.NoError(t, err)
		require.Len(t, txs, 3)
		assert.True(t, txs[0].ExecutedAt.After(txs[1].ExecutedAt))
		assert.True(t, txs[1].ExecutedAt.After(txs[2].ExecutedAt))
	})

	t.Run("TransactionExistsByOrderID detects duplicates", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.CreateTransaction(newTxn("u1", "order-1", "AAPL", models.TxnKindBuy, 10, 150.00, baseTime)))

		exists, err := testDB.TransactionExistsByOrderID("order-1", "manual")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = testDB.TransactionExistsByOrderID("order-1", "zerodha")
		require.NoError(t, err)
		assert.False(t, exists, "same order id from another source is distinct")

		exists, err = testDB.TransactionExistsByOrderID("order-99", "manual")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("duplicate order id from same source rejected", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.CreateTransaction(newTxn("u1", "order-1", "AAPL", models.TxnKindBuy, 10, 150.00, baseTime)))
		err := testDB.CreateTransaction(newTxn("u1", "order-1", "AAPL", models.TxnKindBuy, 10, 150.00, baseTime))
		assert.Error(t, err)
	})

	t.Run("empty order ids do not collide", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.CreateTransaction(newTxn("u1", "", "AAPL", models.TxnKindBuy, 10, 150.00, baseTime)))
		require.NoError(t, testDB.CreateTransaction(newTxn("u1", "", "AAPL", models.TxnKindBuy, 5, 155.00, baseTime.Add(time.Hour))))
	})

	t.Run("decimal round trip preserves precision", func(t *testing.T) {
		testDB.TruncateAll(t)

		tx := newTxn("u1", "order-1", "SLV", models.TxnKindBuy, 0.16017600, 72.67, baseTime)
		require.NoError(t, testDB.CreateTransaction(tx))

		txs, err := testDB.GetTransactionsByUser("u1")
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.True(t, decimal.NewFromFloat(0.16017600).Equal(txs[0].Quantity),
			"expected 0.160176, got %s", txs[0].Quantity)
	})
}
