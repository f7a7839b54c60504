package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/investrack/portfolio-service/internal/models"
)

// Producer handles publishing ledger events to Kafka
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishTradeRecorded publishes an event after a transaction lands in the ledger
func (p *Producer) PublishTradeRecorded(ctx context.Context, tx *models.Transaction) error {
	event := models.LedgerEvent{
		EventType:   models.EventTypeTradeRecorded,
		Symbol:      tx.Symbol,
		Transaction: tx,
		Timestamp:   time.Now(),
	}
	return p.publish(ctx, tx.Symbol, event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.LedgerEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
