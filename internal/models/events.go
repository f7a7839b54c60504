package models

import "time"

// Kafka event type constants
const (
	EventTypeTradeExecuted = "TRADE_EXECUTED"
	EventTypeTradeRecorded = "TRADE_RECORDED"
)

// TradeEvent is the broker-side message consumed from the trade topic.
// Numeric fields arrive as strings to avoid float parsing on the wire.
type TradeEvent struct {
	EventType string         `json:"event_type"`
	Source    string         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
	Data      TradeEventData `json:"data"`
}

// TradeEventData is the payload of a TradeEvent.
type TradeEventData struct {
	OrderID    string  `json:"order_id"`
	UserID     string  `json:"user_id"`
	Symbol     string  `json:"symbol"`
	Instrument string  `json:"instrument,omitempty"`
	Side       string  `json:"side"`
	Quantity   string  `json:"quantity"`
	Price      string  `json:"price"`
	ExecutedAt *string `json:"executed_at,omitempty"`
}

// LedgerEvent is published after a trade has been applied to the holdings
// book and appended to the ledger.
type LedgerEvent struct {
	EventType   string       `json:"event_type"`
	Symbol      string       `json:"symbol"`
	Transaction *Transaction `json:"transaction,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}
