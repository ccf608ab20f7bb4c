package market

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RedisSource is a PriceSource backed by a Redis hash per symbol, so a
// separate feed process can publish quotes the engine reads. Each symbol is
// stored at "quote:{symbol}" with fields "price" and "ts" (Unix nanoseconds).
type RedisSource struct {
	rdb *redis.Client
}

// NewRedisSource wraps an existing client.
func NewRedisSource(rdb *redis.Client) *RedisSource {
	return &RedisSource{rdb: rdb}
}

func quoteKey(symbol string) string {
	return "quote:" + symbol
}

// Publish stores the quote for its symbol.
func (s *RedisSource) Publish(ctx context.Context, q Quote) error {
	fields := map[string]interface{}{
		"price": q.Price.String(),
		"ts":    strconv.FormatInt(q.Time.UnixNano(), 10),
	}
	if err := s.rdb.HSet(ctx, quoteKey(q.Symbol), fields).Err(); err != nil {
		return fmt.Errorf("redis source: publish %s: %w", q.Symbol, err)
	}
	return nil
}

// GetPrice implements PriceSource. It returns ErrNoQuote when the symbol has
// never been published.
func (s *RedisSource) GetPrice(ctx context.Context, symbol string) (Quote, error) {
	vals, err := s.rdb.HGetAll(ctx, quoteKey(symbol)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Quote{}, fmt.Errorf("redis source: get %s: %w", symbol, err)
	}
	if len(vals) == 0 {
		return Quote{}, fmt.Errorf("redis source: %w: %q", ErrNoQuote, symbol)
	}

	price, err := decimal.NewFromString(vals["price"])
	if err != nil {
		return Quote{}, fmt.Errorf("redis source: bad price for %s: %w", symbol, err)
	}

	q := Quote{Symbol: symbol, Price: price}
	if tsStr, ok := vals["ts"]; ok {
		if ns, err := strconv.ParseInt(tsStr, 10, 64); err == nil {
			q.Time = time.Unix(0, ns).UTC()
		}
	}
	return q, nil
}
