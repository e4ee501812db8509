// Package redisstore implements a dateless rate store on a Redis hash.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"exchangebank/internal/rate"
	"exchangebank/internal/store"
)

// Kind is the snapshot kind of the Redis store.
const Kind = "redis"

// DefaultKey is the hash that holds the rates when no key is configured.
const DefaultKey = "exchange_rates"

func init() {
	store.Register(Kind, restore)
}

var (
	_ store.DatelessStore = (*Store)(nil)
	_ store.Adder         = (*Store)(nil)
	_ store.Snapshotter   = (*Store)(nil)
	_ io.Closer           = (*Store)(nil)
)

// Store keeps every rate as a field ("USD_TO_EUR") of a single Redis hash.
type Store struct {
	client *redis.Client
	key    string
	owned  bool
}

// New creates a Store on client using the hash key. An empty key selects DefaultKey.
// The caller keeps ownership of client.
func New(client *redis.Client, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{client: client, key: key}
}

// Close releases the client opened when the store was restored from a snapshot.
// A store built with New leaves its client open.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

// GetRate reads the rate for from -> to.
func (s *Store) GetRate(ctx context.Context, from, to string) (rate.Rate, bool, error) {
	raw, err := s.client.HGet(ctx, s.key, store.PairKey(from, to)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return rate.Rate{}, false, nil
		}
		return rate.Rate{}, false, fmt.Errorf("redis HGET %s: %w", s.key, err)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return rate.Rate{}, false, fmt.Errorf("decode rate %s->%s: %w", from, to, err)
	}
	r, err := rate.New(d)
	if err != nil {
		return rate.Rate{}, false, err
	}
	return r, true, nil
}

// AddRate writes the rate for from -> to.
func (s *Store) AddRate(ctx context.Context, from, to string, r rate.Rate) error {
	if err := s.client.HSet(ctx, s.key, store.PairKey(from, to), r.String()).Err(); err != nil {
		return fmt.Errorf("redis HSET %s: %w", s.key, err)
	}
	return nil
}

type snapshotArgs struct {
	Addr string `json:"addr"`
	DB   int    `json:"db"`
	Key  string `json:"key"`
}

// Snapshot records the connection arguments; the rates themselves stay in Redis.
func (s *Store) Snapshot() (store.Snapshot, error) {
	opts := s.client.Options()
	raw, err := json.Marshal(snapshotArgs{Addr: opts.Addr, DB: opts.DB, Key: s.key})
	if err != nil {
		return store.Snapshot{}, err
	}
	return store.Snapshot{Kind: Kind, Args: raw}, nil
}

func restore(raw json.RawMessage) (any, error) {
	var args snapshotArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("decode redis store args: %w", err)
	}
	if args.Addr == "" {
		return nil, errors.New("redis store args: addr is required")
	}
	s := New(redis.NewClient(&redis.Options{Addr: args.Addr, DB: args.DB}), args.Key)
	s.owned = true
	return s, nil
}
