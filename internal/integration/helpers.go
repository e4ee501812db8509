//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"exchangebank/internal/rate"
	"exchangebank/internal/testkit"
)

// resetTestData truncates the rate table and flushes the current Redis database.
func resetTestData(t *testing.T) {
	t.Helper()
	testkit.Global().Reset(t)
}

// testContext returns a context with a 30-second deadline tied to the test's cleanup.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func mustRate(t *testing.T, s string) rate.Rate {
	t.Helper()
	r, err := rate.New(decimal.RequireFromString(s))
	if err != nil {
		t.Fatalf("rate %q: %v", s, err)
	}
	return r
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
