package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"exchangebank/internal/rate"
	"exchangebank/internal/store"
)

var (
	_ store.DatedStore = (*RateStore)(nil)
	_ store.Adder      = (*RateStore)(nil)
)

// RateStore keeps one rate per pair and calendar day in the exchange_rates table.
type RateStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewRateStore creates a RateStore on db. Migrations must have been applied.
func NewRateStore(db *sql.DB) *RateStore {
	return &RateStore{db: db, now: time.Now}
}

// GetRate returns the latest rate recorded on or before date, or the latest rate overall for the zero date.
func (s *RateStore) GetRate(ctx context.Context, from, to string, date time.Time) (rate.Rate, bool, error) {
	var row *sql.Row
	if date.IsZero() {
		row = s.db.QueryRowContext(ctx, `SELECT rate::text
              FROM exchange_rates
              WHERE base=$1 AND quote=$2
              ORDER BY as_of DESC
              LIMIT 1`, strings.ToUpper(from), strings.ToUpper(to))
	} else {
		row = s.db.QueryRowContext(ctx, `SELECT rate::text
              FROM exchange_rates
              WHERE base=$1 AND quote=$2 AND as_of <= $3::date
              ORDER BY as_of DESC
              LIMIT 1`, strings.ToUpper(from), strings.ToUpper(to), dayString(date))
	}

	var raw string
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rate.Rate{}, false, nil
		}
		return rate.Rate{}, false, fmt.Errorf("query rate %s->%s: %w", from, to, err)
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

// AddRate records r for today.
func (s *RateStore) AddRate(ctx context.Context, from, to string, r rate.Rate) error {
	return s.AddRateOn(ctx, from, to, r, s.now())
}

// AddRateOn records r for the calendar day of date, replacing an existing rate for that day.
func (s *RateStore) AddRateOn(ctx context.Context, from, to string, r rate.Rate, date time.Time) error {
	query := `INSERT INTO exchange_rates (base, quote, as_of, rate)
              VALUES ($1, $2, $3::date, $4::numeric)
              ON CONFLICT (base, quote, as_of)
              DO UPDATE SET rate = EXCLUDED.rate, updated_at = NOW()`

	_, err := s.db.ExecContext(ctx, query, strings.ToUpper(from), strings.ToUpper(to), dayString(date), r.String())
	if err != nil {
		return fmt.Errorf("upsert rate %s->%s: %w", from, to, err)
	}
	return nil
}

// History returns every rate recorded for the pair, oldest first.
func (s *RateStore) History(ctx context.Context, from, to string) ([]rate.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT base, quote, as_of, rate::text
              FROM exchange_rates
              WHERE base=$1 AND quote=$2
              ORDER BY as_of`, strings.ToUpper(from), strings.ToUpper(to))
	if err != nil {
		return nil, fmt.Errorf("query history %s->%s: %w", from, to, err)
	}
	defer rows.Close() //nolint:errcheck // best-effort close

	var out []rate.Record
	for rows.Next() {
		var rec rate.Record
		var raw string
		if err := rows.Scan(&rec.From, &rec.To, &rec.Date, &raw); err != nil {
			return nil, err
		}
		if rec.Value, err = decimal.NewFromString(raw); err != nil {
			return nil, fmt.Errorf("decode rate: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func dayString(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
