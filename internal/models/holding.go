package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset class constants
const (
	AssetClassEquity = "Equity"
	AssetClassBonds  = "Bonds"
	AssetClassFD     = "FD"
)

// Holding is the persistent aggregate position for one (user, instrument):
// current quantity and the quantity-weighted average cost of the contributing
// buys. Sells never touch the average cost.
type Holding struct {
	ID         int             `json:"id"`
	UserID     string          `json:"user_id"`
	Symbol     string          `json:"symbol"`
	Instrument string          `json:"instrument"`
	Quantity   decimal.Decimal `json:"quantity"`
	AvgCost    decimal.Decimal `json:"avg_cost"`
	AssetClass string          `json:"asset_class"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
