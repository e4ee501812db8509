package bank

import (
	"context"
	"fmt"
	"time"

	"exchangebank/internal/currency"
	"exchangebank/internal/rate"
	"exchangebank/internal/store"
)

// Resolver looks up rates in a store whose calling convention was detected once, at construction.
type Resolver struct {
	lookup   *store.Lookup
	registry *currency.Registry
}

// NewResolver attaches to s. It fails with *store.UnsupportedStoreShapeError when s implements
// neither the dateless nor the dated lookup.
func NewResolver(s any, registry *currency.Registry) (*Resolver, error) {
	lookup, err := store.Detect(s)
	if err != nil {
		return nil, err
	}
	if registry == nil {
		registry = currency.Default()
	}
	return &Resolver{lookup: lookup, registry: registry}, nil
}

// Shape returns the detected store convention.
func (r *Resolver) Shape() store.Shape {
	return r.lookup.Shape()
}

// Resolve returns the rate from -> to, optionally on date. ok is false when the store has no rate.
// Store failures are wrapped with ErrStoreLookup.
func (r *Resolver) Resolve(ctx context.Context, from, to any, date time.Time) (rate.Rate, bool, error) {
	fromISO, err := r.registry.ISOCode(from)
	if err != nil {
		return rate.Rate{}, false, err
	}
	toISO, err := r.registry.ISOCode(to)
	if err != nil {
		return rate.Rate{}, false, err
	}

	rt, ok, err := r.lookup.GetRate(ctx, fromISO, toISO, date)
	if err != nil {
		return rate.Rate{}, false, fmt.Errorf("%w: %s -> %s: %w", ErrStoreLookup, fromISO, toISO, err)
	}
	if !ok {
		return rate.Rate{}, false, nil
	}
	if !rt.Decimal().IsPositive() {
		return rate.Rate{}, false, &rate.InvalidRateValueError{Value: rt.Decimal(), Err: rate.ErrNonPositive}
	}
	return rt, true, nil
}
