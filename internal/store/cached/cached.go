// Package cached wraps a dated rate store with a Redis read-through cache.
package cached

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"exchangebank/internal/rate"
	"exchangebank/internal/store"
)

const latestField = "latest"

var (
	_ store.DatedStore = (*Store)(nil)
	_ store.Adder      = (*Store)(nil)
)

// Store caches successful lookups of an underlying dated store. Misses and errors are not cached.
// Adding a rate drops every cached date of that pair.
type Store struct {
	next  store.DatedStore
	cache *redis.Client
	ttl   time.Duration
	name  string
	log   *zap.SugaredLogger
}

// New creates a caching decorator around next. name namespaces the cache keys.
func New(next store.DatedStore, cache *redis.Client, ttl time.Duration, name string, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{
		next:  next,
		cache: cache,
		ttl:   ttl,
		name:  name,
		log:   logger,
	}
}

func (s *Store) cacheKey(from, to string) string {
	return fmt.Sprintf("rate_cache:%s:{%s:%s}", s.name, from, to)
}

func dateField(date time.Time) string {
	if date.IsZero() {
		return latestField
	}
	return date.UTC().Format("2006-01-02")
}

// GetRate attempts to serve the rate from cache before calling the underlying store.
func (s *Store) GetRate(ctx context.Context, from, to string, date time.Time) (rate.Rate, bool, error) {
	if s.cache == nil {
		return s.next.GetRate(ctx, from, to, date)
	}

	key := s.cacheKey(from, to)
	field := dateField(date)

	raw, err := s.cache.HGet(ctx, key, field).Result()
	if err == nil {
		if d, perr := decimal.NewFromString(raw); perr == nil {
			if r, rerr := rate.New(d); rerr == nil {
				return r, true, nil
			}
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warnw("Rate cache read failed", "key", key, "error", err)
	}

	r, ok, err := s.next.GetRate(ctx, from, to, date)
	if err != nil || !ok {
		return r, ok, err
	}

	pipe := s.cache.Pipeline()
	pipe.HSet(ctx, key, field, r.String())
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warnw("Failed to update rate cache", "key", key, "error", err)
	}

	return r, true, nil
}

// AddRate writes through to the underlying store and invalidates the pair's cache.
func (s *Store) AddRate(ctx context.Context, from, to string, r rate.Rate) error {
	adder, ok := s.next.(store.Adder)
	if !ok {
		return store.ErrReadOnly
	}
	if err := adder.AddRate(ctx, from, to, r); err != nil {
		return err
	}
	s.invalidate(ctx, from, to)
	return nil
}

func (s *Store) invalidate(ctx context.Context, from, to string) {
	if s.cache == nil {
		return
	}
	key := s.cacheKey(from, to)
	if err := s.cache.Del(ctx, key).Err(); err != nil {
		s.log.Warnw("Failed to invalidate rate cache", "key", key, "error", err)
	}
}
