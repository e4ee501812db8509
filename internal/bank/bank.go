// Package bank converts money between currencies using rates resolved from an attached rate store.
package bank

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"exchangebank/internal/currency"
	"exchangebank/internal/money"
	"exchangebank/internal/rate"
	"exchangebank/internal/rounding"
	"exchangebank/internal/store"
	"exchangebank/internal/store/memory"
)

// divisionScale bounds the digits kept when a source subunit ratio does not divide evenly
// into a terminating decimal. Ratios made of factors 2 and 5 are always exact.
const divisionScale = 28

var _ money.Exchanger = (*Bank)(nil)

// Bank owns a rate store for its lifetime and converts money through it.
//
// The bank takes no locks. The attached store must be safe for concurrent reads,
// and for concurrent writes if AddRate or ImportRates run alongside conversions,
// or the caller must serialize access.
type Bank struct {
	store    any
	resolver *Resolver
	adder    store.Adder
	registry *currency.Registry
	rounding rounding.Policy
	importer Importer
	log      *zap.SugaredLogger
}

// Option configures a Bank.
type Option func(*Bank)

// WithRounding sets the default rounding policy applied when a conversion supplies none.
func WithRounding(p rounding.Policy) Option {
	return func(b *Bank) { b.rounding = p }
}

// WithImporter attaches the importer invoked by ImportRates.
func WithImporter(imp Importer) Option {
	return func(b *Bank) { b.importer = imp }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(b *Bank) { b.log = logger }
}

// WithRegistry sets the currency registry used to normalize identifiers.
func WithRegistry(r *currency.Registry) Option {
	return func(b *Bank) { b.registry = r }
}

// New attaches a bank to s. The store's lookup convention is detected here, once; an
// unsupported store fails construction with *store.UnsupportedStoreShapeError.
func New(s any, opts ...Option) (*Bank, error) {
	b := &Bank{
		store:    s,
		registry: currency.Default(),
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(b)
	}

	resolver, err := NewResolver(s, b.registry)
	if err != nil {
		return nil, err
	}
	b.resolver = resolver
	b.adder, _ = s.(store.Adder)

	b.log.Infow("Rate store attached",
		"store", fmt.Sprintf("%T", s),
		"shape", resolver.Shape().String(),
		"rounding", b.rounding.Identifier())
	return b, nil
}

// NewDefault creates a bank on an empty in-memory store.
func NewDefault(opts ...Option) *Bank {
	b, err := New(memory.New(), opts...)
	if err != nil {
		// memory.Store always implements the dateless lookup.
		panic(err)
	}
	return b
}

// Store returns the attached rate store.
func (b *Bank) Store() any {
	return b.store
}

// Close releases the attached store if it holds resources of its own, as a store restored
// from a snapshot may. Stores that are not io.Closer are left alone.
func (b *Bank) Close() error {
	return closeStore(b.store)
}

func closeStore(s any) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Shape returns the detected lookup convention of the attached store.
func (b *Bank) Shape() store.Shape {
	return b.resolver.Shape()
}

// Registry returns the currency registry of the bank.
func (b *Bank) Registry() *currency.Registry {
	return b.registry
}

// Rounding returns the default rounding policy.
func (b *Bank) Rounding() rounding.Policy {
	return b.rounding
}

// GetRate resolves the rate from -> to, optionally on date. ok is false when the rate is unknown.
func (b *Bank) GetRate(ctx context.Context, from, to any, date time.Time) (rate.Rate, bool, error) {
	return b.resolver.Resolve(ctx, from, to, date)
}

// Money creates a Money of minor units in cur that converts through b.
func (b *Bank) Money(fractional decimal.Decimal, cur any) (money.Money, error) {
	c, err := b.registry.Wrap(cur)
	if err != nil {
		return money.Money{}, err
	}
	return money.New(fractional, c, b), nil
}

// ExchangeWith converts from into to. An explicit rate in opts bypasses the store; otherwise the
// rate is resolved for opts.Date. The result is rounded by opts.Rounding, else by the bank's
// default policy, else left exact.
func (b *Bank) ExchangeWith(ctx context.Context, from money.Money, to currency.Currency, opts money.ExchangeOptions) (money.Money, error) {
	target, err := b.registry.Wrap(to)
	if err != nil {
		return money.Money{}, err
	}
	if from.Currency().Equal(target) {
		return from, nil
	}

	r, err := b.effectiveRate(ctx, from.Currency(), target, opts)
	if err != nil {
		return money.Money{}, err
	}

	ex := calculateFractional(from, target).Mul(r.Decimal())
	if from.Currency().SubunitToUnit != 1 {
		ex = divideExact(ex, from.Currency().SubunitToUnit)
	}

	return money.New(b.round(ex, opts.Rounding), target, b), nil
}

func (b *Bank) effectiveRate(ctx context.Context, from, to currency.Currency, opts money.ExchangeOptions) (rate.Rate, error) {
	r, ok, err := rate.Wrap(opts.Rate)
	if err != nil {
		return rate.Rate{}, err
	}
	if ok {
		return r, nil
	}

	r, ok, err = b.resolver.Resolve(ctx, from, to, opts.Date)
	if err != nil {
		if !errors.Is(err, ErrStoreLookup) {
			return rate.Rate{}, err
		}
		b.log.Warnw("Rate lookup failed", "from", from.ISOCode, "to", to.ISOCode, "error", err)
		return rate.Rate{}, &UnknownRateError{From: from.ISOCode, To: to.ISOCode, Err: err}
	}
	if !ok {
		return rate.Rate{}, &UnknownRateError{From: from.ISOCode, To: to.ISOCode}
	}
	return r, nil
}

// calculateFractional scales the source minor units by the target subunit ratio. The division by
// the source ratio is deferred until after the rate is applied so that it happens only once.
func calculateFractional(from money.Money, to currency.Currency) decimal.Decimal {
	return from.Fractional().Mul(decimal.NewFromInt(to.SubunitToUnit))
}

// divideExact divides d by a positive subunit ratio. When the ratio has no prime factors other
// than 2 and 5 the quotient terminates and is computed without loss. Other ratios are cut off at
// divisionScale digits past the dividend's own precision.
func divideExact(d decimal.Decimal, by int64) decimal.Decimal {
	if k, ok := terminatingScale(by); ok {
		// 1/by == m * 10^-k with m integral
		m, _ := decimal.New(1, k).QuoRem(decimal.NewFromInt(by), 0)
		// drop the trailing zeros the shift leaves behind
		return decimal.RequireFromString(d.Mul(m).Shift(-k).String())
	}
	scale := int32(divisionScale)
	if exp := d.Exponent(); exp < 0 {
		scale -= exp
	}
	return d.DivRound(decimal.NewFromInt(by), scale)
}

// terminatingScale reports the smallest k with 10^k divisible by n, if one exists.
func terminatingScale(n int64) (int32, bool) {
	var twos, fives int32
	for n%2 == 0 {
		n /= 2
		twos++
	}
	for n%5 == 0 {
		n /= 5
		fives++
	}
	if n != 1 {
		return 0, false
	}
	return max(twos, fives), true
}

func (b *Bank) round(ex decimal.Decimal, override rounding.Func) decimal.Decimal {
	if override != nil {
		return override(ex)
	}
	return b.rounding.Apply(ex)
}
