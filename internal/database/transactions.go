package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/investrack/portfolio-service/internal/models"
)

// CreateTransaction appends a transaction to the ledger
func (db *DB) CreateTransaction(t *models.Transaction) error {
	query := `
		INSERT INTO transactions (
			user_id, order_id, source, symbol, instrument, kind,
			quantity, price, executed_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
		RETURNING id
	`
	now := time.Now()

	err := db.conn.QueryRow(query,
		t.UserID, t.OrderID, t.Source, t.Symbol, t.Instrument, t.Kind,
		t.Quantity, t.Price, t.ExecutedAt, now,
	).Scan(&t.ID)

	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	t.CreatedAt = now
	return nil
}

// GetTransactionsByUser retrieves a user's full ledger in replay order
func (db *DB) GetTransactionsByUser(userID string) ([]*models.Transaction, error) {
	query := `
		SELECT id, user_id, order_id, source, symbol, instrument, kind,
		       quantity, price, executed_at, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY executed_at ASC, id ASC
	`
	return db.scanTransactions(db.conn.Query(query, userID))
}

// GetRecentTransactionsByUser retrieves a user's most recent transactions
func (db *DB) GetRecentTransactionsByUser(userID string, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, user_id, order_id, source, symbol, instrument, kind,
		       quantity, price, executed_at, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY executed_at DESC, id DESC
		LIMIT $2
	`
	return db.scanTransactions(db.conn.Query(query, userID, limit))
}

// TransactionExistsByOrderID checks if a transaction with the given order_id and source already exists
func (db *DB) TransactionExistsByOrderID(orderID, source string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM transactions WHERE order_id = $1 AND source = $2)`
	var exists bool
	err := db.conn.QueryRow(query, orderID, source).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check transaction existence: %w", err)
	}
	return exists, nil
}

func (db *DB) scanTransactions(rows *sql.Rows, err error) ([]*models.Transaction, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []*models.Transaction
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(
			&t.ID, &t.UserID, &t.OrderID, &t.Source, &t.Symbol, &t.Instrument, &t.Kind,
			&t.Quantity, &t.Price, &t.ExecutedAt, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txs, nil
}
