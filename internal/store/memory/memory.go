// Package memory provides the default dateless, in-process rate store.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"exchangebank/internal/rate"
	"exchangebank/internal/store"
)

// Kind is the snapshot kind of the memory store.
const Kind = "memory"

func init() {
	store.Register(Kind, restore)
}

var (
	_ store.DatelessStore = (*Store)(nil)
	_ store.Adder         = (*Store)(nil)
	_ store.Snapshotter   = (*Store)(nil)
)

// Store keeps rates in a map guarded by a RWMutex.
type Store struct {
	mu    sync.RWMutex
	rates map[string]rate.Rate
}

// New creates an empty Store.
func New() *Store {
	return &Store{rates: make(map[string]rate.Rate)}
}

// GetRate returns the rate registered for from -> to.
func (s *Store) GetRate(_ context.Context, from, to string) (rate.Rate, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rates[store.PairKey(from, to)]
	return r, ok, nil
}

// AddRate registers or overwrites the rate for from -> to.
func (s *Store) AddRate(_ context.Context, from, to string, r rate.Rate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[store.PairKey(from, to)] = r
	return nil
}

// Records returns every registered rate, ordered by pair key.
func (s *Store) Records() []rate.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.rates))
	for k := range s.rates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]rate.Record, 0, len(keys))
	for _, k := range keys {
		from, to, _ := store.SplitPairKey(k)
		out = append(out, rate.Record{From: from, To: to, Value: s.rates[k].Decimal()})
	}
	return out
}

type snapshotArgs struct {
	Rates map[string]string `json:"rates"`
}

// Snapshot serializes the registered rates.
func (s *Store) Snapshot() (store.Snapshot, error) {
	s.mu.RLock()
	args := snapshotArgs{Rates: make(map[string]string, len(s.rates))}
	for k, r := range s.rates {
		args.Rates[k] = r.String()
	}
	s.mu.RUnlock()

	raw, err := json.Marshal(args)
	if err != nil {
		return store.Snapshot{}, err
	}
	return store.Snapshot{Kind: Kind, Args: raw}, nil
}

func restore(raw json.RawMessage) (any, error) {
	s := New()
	if len(raw) == 0 {
		return s, nil
	}

	var args snapshotArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("decode memory store args: %w", err)
	}
	for k, v := range args.Rates {
		if _, _, ok := store.SplitPairKey(k); !ok {
			return nil, fmt.Errorf("invalid pair key %q", k)
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("rate %s: %w", k, err)
		}
		r, err := rate.New(d)
		if err != nil {
			return nil, fmt.Errorf("rate %s: %w", k, err)
		}
		s.rates[k] = r
	}
	return s, nil
}
