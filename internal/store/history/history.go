// Package history provides an in-process dated rate store holding a time series per currency pair.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"exchangebank/internal/rate"
	"exchangebank/internal/store"
)

// Kind is the snapshot kind of the history store.
const Kind = "history"

const dateLayout = "2006-01-02"

func init() {
	store.Register(Kind, restore)
}

var (
	_ store.DatedStore  = (*Store)(nil)
	_ store.Adder       = (*Store)(nil)
	_ store.Snapshotter = (*Store)(nil)
)

type point struct {
	day  time.Time
	rate rate.Rate
}

// Store resolves a dated lookup to the latest rate recorded on or before that day.
type Store struct {
	mu     sync.RWMutex
	series map[string][]point
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to date rates added without an explicit date.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		series: make(map[string][]point),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// GetRate returns the rate in effect on date. The zero date returns the most recent rate.
func (s *Store) GetRate(_ context.Context, from, to string, date time.Time) (rate.Rate, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pts := s.series[store.PairKey(from, to)]
	if len(pts) == 0 {
		return rate.Rate{}, false, nil
	}
	if date.IsZero() {
		return pts[len(pts)-1].rate, true, nil
	}

	day := Day(date)
	// first point strictly after day
	i := sort.Search(len(pts), func(i int) bool { return pts[i].day.After(day) })
	if i == 0 {
		return rate.Rate{}, false, nil
	}
	return pts[i-1].rate, true, nil
}

// AddRate records r for today.
func (s *Store) AddRate(ctx context.Context, from, to string, r rate.Rate) error {
	return s.AddRateOn(ctx, from, to, r, s.now())
}

// AddRateOn records r for the calendar day of date, replacing any rate already recorded that day.
func (s *Store) AddRateOn(_ context.Context, from, to string, r rate.Rate, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insert(store.PairKey(from, to), point{day: Day(date), rate: r})
	return nil
}

func (s *Store) insert(key string, p point) {
	pts := s.series[key]
	i := sort.Search(len(pts), func(i int) bool { return !pts[i].day.Before(p.day) })
	if i < len(pts) && pts[i].day.Equal(p.day) {
		pts[i] = p
		return
	}
	pts = append(pts, point{})
	copy(pts[i+1:], pts[i:])
	pts[i] = p
	s.series[key] = pts
}

// Records returns every recorded rate ordered by pair then date.
func (s *Store) Records() []rate.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.series))
	for k := range s.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []rate.Record
	for _, k := range keys {
		from, to, _ := store.SplitPairKey(k)
		for _, p := range s.series[k] {
			out = append(out, rate.Record{From: from, To: to, Value: p.rate.Decimal(), Date: p.day})
		}
	}
	return out
}

type snapshotEntry struct {
	From string `json:"from"`
	To   string `json:"to"`
	Rate string `json:"rate"`
	Date string `json:"date"`
}

type snapshotArgs struct {
	Series []snapshotEntry `json:"series"`
}

// Snapshot serializes the full time series.
func (s *Store) Snapshot() (store.Snapshot, error) {
	var args snapshotArgs
	for _, rec := range s.Records() {
		args.Series = append(args.Series, snapshotEntry{
			From: rec.From,
			To:   rec.To,
			Rate: rec.Value.String(),
			Date: rec.Date.Format(dateLayout),
		})
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return store.Snapshot{}, err
	}
	return store.Snapshot{Kind: Kind, Args: raw}, nil
}

// restore is the registered factory. Stores rebuilt through store.Restore date undated
// additions with the wall clock; use Restore to keep a custom clock.
func restore(raw json.RawMessage) (any, error) {
	s, err := Restore(raw)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Restore rebuilds a Store from the args of its snapshot, applying opts first.
func Restore(raw json.RawMessage, opts ...Option) (*Store, error) {
	s := New(opts...)
	if len(raw) == 0 {
		return s, nil
	}

	var args snapshotArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("decode history store args: %w", err)
	}
	for _, e := range args.Series {
		d, err := decimal.NewFromString(e.Rate)
		if err != nil {
			return nil, fmt.Errorf("rate %s->%s on %s: %w", e.From, e.To, e.Date, err)
		}
		r, err := rate.New(d)
		if err != nil {
			return nil, fmt.Errorf("rate %s->%s on %s: %w", e.From, e.To, e.Date, err)
		}
		day, err := time.Parse(dateLayout, e.Date)
		if err != nil {
			return nil, fmt.Errorf("rate %s->%s: %w", e.From, e.To, err)
		}
		s.insert(store.PairKey(e.From, e.To), point{day: day, rate: r})
	}
	return s, nil
}
