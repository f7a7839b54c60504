package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/investrack/portfolio-service/internal/models"
	"github.com/investrack/portfolio-service/internal/trading"
)

// TradeExecutor applies an incoming trade order against holdings and the ledger.
type TradeExecutor interface {
	Execute(ctx context.Context, ord trading.TradeOrder) (*models.Transaction, error)
}

// LedgerReader defines the interface for ledger duplicate checks
type LedgerReader interface {
	TransactionExistsByOrderID(orderID, source string) (bool, error)
}

// Consumer handles consuming trade events from Kafka and replaying them
// through the trade execution service. Duplicate deliveries are detected
// by (order_id, source) against the ledger.
type Consumer struct {
	reader   *kafka.Reader
	executor TradeExecutor
	ledger   LedgerReader
}

// NewConsumer creates a new Kafka consumer for trade events
func NewConsumer(brokers []string, topic, groupID string, executor TradeExecutor, ledger LedgerReader) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader:   reader,
		executor: executor,
		ledger:   ledger,
	}
}

// Start begins consuming messages from Kafka
func (c *Consumer) Start(ctx context.Context) error {
	log.Printf("Starting Kafka consumer for topic: %s", c.reader.Config().Topic)

	for {
		select {
		case <-ctx.Done():
			log.Println("Kafka consumer shutting down...")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				log.Printf("Error reading message: %v", err)
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				log.Printf("Error processing message: %v", err)
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	log.Printf("Received message from partition %d offset %d: key=%s",
		msg.Partition, msg.Offset, string(msg.Key))

	var event models.TradeEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal trade event: %w", err)
	}

	if event.EventType != models.EventTypeTradeExecuted {
		log.Printf("Ignoring event type: %s", event.EventType)
		return nil
	}

	// Check for duplicate (idempotency)
	if event.Data.OrderID != "" {
		exists, err := c.ledger.TransactionExistsByOrderID(event.Data.OrderID, event.Source)
		if err != nil {
			return fmt.Errorf("failed to check for duplicate trade: %w", err)
		}
		if exists {
			log.Printf("Trade %s from %s already recorded, skipping", event.Data.OrderID, event.Source)
			return nil
		}
	}

	ord, err := c.convertEvent(event)
	if err != nil {
		return fmt.Errorf("failed to convert trade event: %w", err)
	}

	tx, err := c.executor.Execute(ctx, ord)
	if err != nil {
		return fmt.Errorf("failed to execute trade: %w", err)
	}

	log.Printf("Recorded trade: %s %s %s @ %s (order_id: %s)",
		tx.Kind, tx.Quantity, tx.Symbol, tx.Price, tx.OrderID)

	return nil
}

// convertEvent maps a TradeEvent to a trade order
func (c *Consumer) convertEvent(event models.TradeEvent) (trading.TradeOrder, error) {
	data := event.Data

	quantity, err := decimal.NewFromString(data.Quantity)
	if err != nil {
		return trading.TradeOrder{}, fmt.Errorf("invalid quantity %s: %w", data.Quantity, err)
	}

	price := decimal.Zero
	if data.Price != "" {
		price, err = decimal.NewFromString(data.Price)
		if err != nil {
			return trading.TradeOrder{}, fmt.Errorf("invalid price %s: %w", data.Price, err)
		}
	}

	kind := strings.ToUpper(data.Side)
	switch kind {
	case models.TxnKindBuy, models.TxnKindSell, models.TxnKindDeposit:
	default:
		return trading.TradeOrder{}, fmt.Errorf("invalid trade side: %s", data.Side)
	}

	// Parse executed_at timestamp
	var executedAt time.Time
	if data.ExecutedAt != nil && *data.ExecutedAt != "" {
		executedAt, err = time.Parse(time.RFC3339, *data.ExecutedAt)
		if err != nil {
			// Try parsing without timezone
			executedAt, err = time.Parse("2006-01-02T15:04:05", *data.ExecutedAt)
			if err != nil {
				executedAt = time.Now()
			}
		}
	} else {
		executedAt = time.Now()
	}

	return trading.TradeOrder{
		UserID:     data.UserID,
		Symbol:     data.Symbol,
		Instrument: data.Instrument,
		OrderID:    data.OrderID,
		Source:     event.Source,
		Kind:       kind,
		Quantity:   quantity,
		Price:      price,
		ExecutedAt: executedAt,
	}, nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
