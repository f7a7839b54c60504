package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Quotes   QuotesConfig
	Reports  ReportsConfig
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers     []string
	TradeTopic  string
	LedgerTopic string
	GroupID     string
}

// RedisConfig holds Redis configuration for the quote cache
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// QuotesConfig holds market data provider configuration
type QuotesConfig struct {
	FinnhubAPIKey string
	Timeout       time.Duration
	CacheTTL      time.Duration
}

// ReportsConfig holds report calculation parameters
type ReportsConfig struct {
	InflationRate    float64
	ValuationWorkers int
	FDAppreciation   float64
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "portfolio"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers:     strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			TradeTopic:  getEnv("KAFKA_TRADE_TOPIC", "trade-events"),
			LedgerTopic: getEnv("KAFKA_LEDGER_TOPIC", "ledger-events"),
			GroupID:     getEnv("KAFKA_GROUP_ID", "portfolio-service"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Quotes: QuotesConfig{
			FinnhubAPIKey: getEnv("FINNHUB_API_KEY", ""),
			Timeout:       getEnvDuration("QUOTE_TIMEOUT", 3*time.Second),
			CacheTTL:      getEnvDuration("QUOTE_CACHE_TTL", time.Minute),
		},
		Reports: ReportsConfig{
			InflationRate:    getEnvFloat("INFLATION_RATE", 0.06),
			ValuationWorkers: getEnvInt("VALUATION_WORKERS", 8),
			FDAppreciation:   getEnvFloat("FD_APPRECIATION", 1.07),
		},
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
