// Package catalogcache keeps title catalog reads in Redis across requests.
// Entries are keyed by a generation counter; Invalidate bumps the counter
// so a data refresh makes every earlier entry unreachable at once.
package catalogcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/peoplesbranch/scorecard/internal/legislation"
)

const (
	keyPrefix     = "scorecard:catalog:"
	generationKey = keyPrefix + "generation"

	// stored for known misses so they are not re-read every request
	missMarker = "-"
)

// Cache is a legislation.Catalog that reads through Redis to an inner catalog.
// Redis failures fall through to the inner catalog.
type Cache struct {
	rdb   redis.Cmdable
	inner legislation.Catalog
	ttl   time.Duration
}

// New wraps inner; ttl bounds how long an entry survives without invalidation
func New(rdb redis.Cmdable, inner legislation.Catalog, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{rdb: rdb, inner: inner, ttl: ttl}
}

// Invalidate starts a new generation and returns it
func (c *Cache) Invalidate(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Incr(ctx, generationKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to bump catalog generation: %w", err)
	}
	slog.Info("Title catalog cache invalidated", "generation", gen)
	return gen, nil
}

// Generation returns the current generation (0 before the first invalidation)
func (c *Cache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read catalog generation: %w", err)
	}
	return gen, nil
}

// BillTitle implements legislation.Catalog
func (c *Cache) BillTitle(ctx context.Context, congress int, billType string, number int) (*legislation.BillTitle, error) {
	key, ok := c.key(ctx, fmt.Sprintf("bill:%d:%s:%d", congress, billType, number))
	if ok {
		if raw, hit := c.get(ctx, key); hit {
			if raw == missMarker {
				return nil, nil
			}
			var bt legislation.BillTitle
			if err := json.Unmarshal([]byte(raw), &bt); err == nil {
				return &bt, nil
			}
		}
	}

	bt, err := c.inner.BillTitle(ctx, congress, billType, number)
	if err != nil {
		return nil, err
	}
	if ok {
		value := missMarker
		if bt != nil {
			b, err := json.Marshal(bt)
			if err != nil {
				return bt, nil
			}
			value = string(b)
		}
		c.set(ctx, key, value)
	}
	return bt, nil
}

// NominationDescription implements legislation.Catalog
func (c *Cache) NominationDescription(ctx context.Context, congress, number int) (string, error) {
	key, ok := c.key(ctx, fmt.Sprintf("nom:%d:%d", congress, number))
	if ok {
		if raw, hit := c.get(ctx, key); hit {
			if raw == missMarker {
				return "", nil
			}
			return raw, nil
		}
	}

	desc, err := c.inner.NominationDescription(ctx, congress, number)
	if err != nil {
		return "", err
	}
	if ok {
		value := desc
		if value == "" {
			value = missMarker
		}
		c.set(ctx, key, value)
	}
	return desc, nil
}

// key builds the generation-scoped key; ok is false when Redis is unreachable
func (c *Cache) key(ctx context.Context, suffix string) (string, bool) {
	gen, err := c.Generation(ctx)
	if err != nil {
		slog.Warn("Catalog cache unavailable", "error", err)
		return "", false
	}
	return keyPrefix + strconv.FormatInt(gen, 10) + ":" + suffix, true
}

func (c *Cache) get(ctx context.Context, key string) (string, bool) {
	raw, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("Catalog cache read failed", "key", key, "error", err)
		}
		return "", false
	}
	return raw, true
}

func (c *Cache) set(ctx context.Context, key, value string) {
	if err := c.rdb.Set(ctx, key, value, c.ttl).Err(); err != nil {
		slog.Warn("Catalog cache write failed", "key", key, "error", err)
	}
}
