// Command portfoliod consumes trade events from Kafka and maintains
// per-investor holdings and the transaction ledger in PostgreSQL.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/investrack/portfolio-service/internal/config"
	"github.com/investrack/portfolio-service/internal/database"
	"github.com/investrack/portfolio-service/internal/engine"
	"github.com/investrack/portfolio-service/internal/kafka"
	"github.com/investrack/portfolio-service/internal/trading"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.LedgerTopic)
	defer producer.Close()

	book := engine.NewHoldingsBook(db)
	service := trading.NewService(book, db, producer)

	consumer := kafka.NewConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.TradeTopic,
		cfg.Kafka.GroupID,
		service,
		db,
	)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("portfoliod starting, consuming from %s", cfg.Kafka.TradeTopic)
	if err := consumer.Start(ctx); err != nil {
		log.Fatalf("Consumer stopped with error: %v", err)
	}
	log.Println("portfoliod stopped")
}
