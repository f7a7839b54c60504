package models

import "github.com/shopspring/decimal"

// PnLEntry is one instrument's realized profit-and-loss line. Values are
// rounded to two decimal places when the entry is built, never earlier.
type PnLEntry struct {
	Instrument     string          `json:"instrument"`
	TotalSaleValue decimal.Decimal `json:"total_sale_value"`
	CostBasis      decimal.Decimal `json:"cost_basis"`
	RealizedPnL    decimal.Decimal `json:"realized_pnl"`
	// Inconsistent is set when the ledger sold more than it ever bought for
	// this instrument. UnmatchedQuantity carries the residue; its revenue is
	// excluded from the figures above rather than given an invented cost basis.
	Inconsistent      bool            `json:"data_inconsistency,omitempty"`
	UnmatchedQuantity decimal.Decimal `json:"unmatched_quantity,omitempty"`
}

// RealReturnEntry is one instrument's inflation-adjusted return line.
type RealReturnEntry struct {
	Instrument          string          `json:"instrument"`
	NominalPnL          decimal.Decimal `json:"nominal_pnl"`
	InflationAdjustment decimal.Decimal `json:"inflation_adjustment"`
	RealPnL             decimal.Decimal `json:"real_pnl"`
	Inconsistent        bool            `json:"data_inconsistency,omitempty"`
	UnmatchedQuantity   decimal.Decimal `json:"unmatched_quantity,omitempty"`
}

// ScoreBreakdown holds the individual components of the investor score.
type ScoreBreakdown struct {
	Base            int `json:"base"`
	Diversification int `json:"diversification"`
	Profitability   int `json:"profitability"`
	Discipline      int `json:"discipline"`
}

// ScoreFeedback carries the qualitative label for each score component.
type ScoreFeedback struct {
	Diversification string `json:"diversification"`
	Profitability   string `json:"profitability"`
	Discipline      string `json:"discipline"`
}

// Score is the composite investor score, always within [300, 900].
type Score struct {
	Score     int            `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	Feedback  ScoreFeedback  `json:"feedback"`
}

// EnrichedHolding augments a holding with its live valuation. CurrentPrice
// falls back to the holding's average cost when no quote is available.
type EnrichedHolding struct {
	Holding
	CurrentPrice decimal.Decimal `json:"current_price"`
	TotalValue   decimal.Decimal `json:"total_value"`
	PnL          decimal.Decimal `json:"pnl"`
}
