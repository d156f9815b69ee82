package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	domainrates "fleetbook/internal/domain/rates"
)

// RatesCache is a read-through cache in front of a rates source. Rate data
// changes rarely, so short TTLs keep the booking flow off the database without
// risking stale pricing for long.
type RatesCache struct {
	client *redis.Client
	source domainrates.Source
	ttl    time.Duration
	logger *slog.Logger
}

func NewRatesCache(client *redis.Client, source domainrates.Source, ttl time.Duration, logger *slog.Logger) *RatesCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RatesCache{client: client, source: source, ttl: ttl, logger: logger}
}

func (c *RatesCache) CarRates(ctx context.Context, carID string) (domainrates.RateSchedule, error) {
	key := "rates:car:" + carID
	var cached domainrates.RateSchedule
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}
	schedule, err := c.source.CarRates(ctx, carID)
	if err != nil {
		return domainrates.RateSchedule{}, err
	}
	c.store(ctx, key, schedule)
	return schedule, nil
}

func (c *RatesCache) PlatformFees(ctx context.Context) (domainrates.PlatformFeeRates, error) {
	const key = "rates:platform"
	var cached domainrates.PlatformFeeRates
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}
	fees, err := c.source.PlatformFees(ctx)
	if err != nil {
		return domainrates.PlatformFeeRates{}, err
	}
	c.store(ctx, key, fees)
	return fees, nil
}

type addonRateEntry struct {
	Rate  decimal.Decimal `json:"rate"`
	Found bool            `json:"found"`
}

// CurrentAddonRate caches negative lookups too; an unconfigured add-on would
// otherwise hit the database on every quote.
func (c *RatesCache) CurrentAddonRate(ctx context.Context, addon domainrates.AddonType, at time.Time) (decimal.Decimal, bool, error) {
	key := "rates:addon:" + string(addon) + ":" + at.UTC().Truncate(time.Hour).Format(time.RFC3339)
	var cached addonRateEntry
	if c.lookup(ctx, key, &cached) {
		return cached.Rate, cached.Found, nil
	}
	rate, ok, err := c.source.CurrentAddonRate(ctx, addon, at)
	if err != nil {
		return decimal.Zero, false, err
	}
	c.store(ctx, key, addonRateEntry{Rate: rate, Found: ok})
	return rate, ok, nil
}

// lookup treats every cache failure as a miss.
func (c *RatesCache) lookup(ctx context.Context, key string, dest any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("rates cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("rates cache entry corrupt, ignoring", "key", key, "error", err)
		return false
	}
	return true
}

func (c *RatesCache) store(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("rates cache write failed", "key", key, "error", err)
	}
}

var _ domainrates.Source = (*RatesCache)(nil)
