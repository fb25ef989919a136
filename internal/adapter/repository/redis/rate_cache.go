package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/gosplit/internal/domain"
	"github.com/iho/gosplit/internal/usecase"
)

// RateCache decorates a RateSource with a per-pivot Redis cache. A cache
// failure never fails the lookup; the table is fetched from the source and
// the miss is logged.
type RateCache struct {
	client *redis.Client
	source usecase.RateSource
	ttl    time.Duration
	prefix string
	logger zerolog.Logger
}

// NewRateCache creates a caching rate source in front of source.
func NewRateCache(client *redis.Client, source usecase.RateSource, ttl time.Duration, logger zerolog.Logger) *RateCache {
	return &RateCache{
		client: client,
		source: source,
		ttl:    ttl,
		prefix: "rates:",
		logger: logger,
	}
}

// Table returns the cached table for pivot, falling back to the source.
func (c *RateCache) Table(ctx context.Context, pivot string, asOf time.Time) (*domain.RateTable, error) {
	key := c.prefix + domain.NormalizeCurrency(pivot)

	cached, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var table domain.RateTable
		if err := json.Unmarshal(cached, &table); err == nil {
			return &table, nil
		}
		c.logger.Warn().Str("key", key).Msg("discarding malformed cached rate table")
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn().Err(err).Str("key", key).Msg("rate cache read failed")
	}

	table, err := c.source.Table(ctx, pivot, asOf)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(table); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("rate cache write failed")
		}
	}

	return table, nil
}
