package quotes

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// CachedProvider is a read-through Redis cache in front of another Provider.
// Cache failures degrade to the underlying provider; they never fail a lookup.
type CachedProvider struct {
	rdb  *redis.Client
	next Provider
	ttl  time.Duration
}

// NewCachedProvider wraps next with a Redis quote cache.
func NewCachedProvider(rdb *redis.Client, next Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{rdb: rdb, next: next, ttl: ttl}
}

func quoteKey(symbol string) string {
	return "quote:" + symbol
}

// Quote returns the cached price when fresh, otherwise fetches from the
// underlying provider and stores the result.
func (c *CachedProvider) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	val, err := c.rdb.Get(ctx, quoteKey(symbol)).Result()
	if err == nil {
		if price, perr := decimal.NewFromString(val); perr == nil {
			return price, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("quote cache read for %s failed: %v", symbol, err)
	}

	price, err := c.next.Quote(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}

	if err := c.rdb.Set(ctx, quoteKey(symbol), price.String(), c.ttl).Err(); err != nil {
		log.Printf("quote cache write for %s failed: %v", symbol, err)
	}
	return price, nil
}

// Compile-time interface checks.
var (
	_ Provider = (*FinnhubClient)(nil)
	_ Provider = (*CachedProvider)(nil)
)
