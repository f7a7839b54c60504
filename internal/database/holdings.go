package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/investrack/portfolio-service/internal/models"
)

// GetHolding retrieves a holding by user and symbol
func (db *DB) GetHolding(userID, symbol string) (*models.Holding, error) {
	query := `
		SELECT id, user_id, symbol, instrument, quantity, avg_cost, asset_class,
		       created_at, updated_at
		FROM holdings
		WHERE user_id = $1 AND symbol = $2
	`
	var h models.Holding
	err := db.conn.QueryRow(query, userID, symbol).Scan(
		&h.ID, &h.UserID, &h.Symbol, &h.Instrument, &h.Quantity, &h.AvgCost, &h.AssetClass,
		&h.CreatedAt, &h.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("holding %s for user %s: %w", symbol, userID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}
	return &h, nil
}

// GetHoldingsByUser retrieves all holdings for a user ordered by symbol
func (db *DB) GetHoldingsByUser(userID string) ([]*models.Holding, error) {
	query := `
		SELECT id, user_id, symbol, instrument, quantity, avg_cost, asset_class,
		       created_at, updated_at
		FROM holdings
		WHERE user_id = $1
		ORDER BY symbol ASC
	`
	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var holdings []*models.Holding
	for rows.Next() {
		var h models.Holding
		err := rows.Scan(
			&h.ID, &h.UserID, &h.Symbol, &h.Instrument, &h.Quantity, &h.AvgCost, &h.AssetClass,
			&h.CreatedAt, &h.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", err)
	}

	return holdings, nil
}

// CreateHolding inserts a new holding
func (db *DB) CreateHolding(h *models.Holding) error {
	query := `
		INSERT INTO holdings (
			user_id, symbol, instrument, quantity, avg_cost, asset_class,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		RETURNING id
	`
	now := time.Now()

	err := db.conn.QueryRow(query,
		h.UserID, h.Symbol, h.Instrument, h.Quantity, h.AvgCost, h.AssetClass,
		now, now,
	).Scan(&h.ID)

	if err != nil {
		return fmt.Errorf("failed to create holding: %w", err)
	}
	h.CreatedAt = now
	h.UpdatedAt = now
	return nil
}

// UpdateHolding updates an existing holding's quantity and cost basis
func (db *DB) UpdateHolding(h *models.Holding) error {
	query := `
		UPDATE holdings
		SET quantity = $2, avg_cost = $3, instrument = $4, asset_class = $5, updated_at = $6
		WHERE id = $1
	`
	now := time.Now()

	result, err := db.conn.Exec(query, h.ID, h.Quantity, h.AvgCost, h.Instrument, h.AssetClass, now)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("holding %d: %w", h.ID, models.ErrNotFound)
	}
	h.UpdatedAt = now
	return nil
}

// DeleteHolding removes a holding by id
func (db *DB) DeleteHolding(id int) error {
	query := `DELETE FROM holdings WHERE id = $1`
	result, err := db.conn.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("holding %d: %w", id, models.ErrNotFound)
	}
	return nil
}
