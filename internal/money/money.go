// Package money defines the immutable monetary value and its conversion entry point.
package money

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"exchangebank/internal/currency"
	"exchangebank/internal/rounding"
)

// ErrNoBank is returned when a Money without an attached bank is asked to convert to another currency.
var ErrNoBank = errors.New("money has no bank attached")

// Exchanger is the bank a Money converts itself through.
type Exchanger interface {
	ExchangeWith(ctx context.Context, from Money, to currency.Currency, opts ExchangeOptions) (Money, error)
	Registry() *currency.Registry
}

// Money is an amount in minor units ("fractional") of a currency. It is never mutated;
// conversions return a new Money.
type Money struct {
	fractional decimal.Decimal
	currency   currency.Currency
	bank       Exchanger
}

// New creates a Money of fractional minor units of cur, converted through bank.
func New(fractional decimal.Decimal, cur currency.Currency, bank Exchanger) Money {
	return Money{fractional: fractional, currency: cur, bank: bank}
}

// FromMinor creates a Money from an integral amount of minor units.
func FromMinor(minor int64, cur currency.Currency, bank Exchanger) Money {
	return New(decimal.NewFromInt(minor), cur, bank)
}

// FromMajor creates a Money from an amount in major units, e.g. "10.25" dollars.
func FromMajor(major decimal.Decimal, cur currency.Currency, bank Exchanger) Money {
	return New(major.Mul(decimal.NewFromInt(cur.SubunitToUnit)), cur, bank)
}

// Fractional returns the amount in minor units. It may carry a fractional part
// when a conversion was performed without rounding.
func (m Money) Fractional() decimal.Decimal {
	return m.fractional
}

// Currency returns the currency of m.
func (m Money) Currency() currency.Currency {
	return m.currency
}

// Bank returns the exchanger attached to m, if any.
func (m Money) Bank() Exchanger {
	return m.bank
}

// Amount returns the amount in major units.
func (m Money) Amount() decimal.Decimal {
	if m.currency.SubunitToUnit <= 1 {
		return m.fractional
	}
	return m.fractional.Div(decimal.NewFromInt(m.currency.SubunitToUnit))
}

// Equal reports whether m and other have the same currency and numerically equal amounts.
func (m Money) Equal(other Money) bool {
	return m.currency.Equal(other.currency) && m.fractional.Equal(other.fractional)
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Amount().String(), m.currency.ISOCode)
}

// ExchangeOptions carries the optional parameters of a single conversion.
type ExchangeOptions struct {
	// Date selects a historical rate. The zero time means no date.
	Date time.Time
	// Rate overrides the resolved rate. See rate.Wrap for accepted values.
	Rate any
	// Rounding overrides the bank's rounding policy for this conversion.
	Rounding rounding.Func
}

// ExchangeOption configures ExchangeOptions.
type ExchangeOption func(*ExchangeOptions)

// WithDate requests the rate in effect on date.
func WithDate(date time.Time) ExchangeOption {
	return func(o *ExchangeOptions) { o.Date = date }
}

// WithRate converts with an explicit rate instead of looking one up.
func WithRate(r any) ExchangeOption {
	return func(o *ExchangeOptions) { o.Rate = r }
}

// WithRounding applies fn to the exact result of this conversion.
func WithRounding(fn rounding.Func) ExchangeOption {
	return func(o *ExchangeOptions) { o.Rounding = fn }
}

// ExchangeTo converts m into the currency identified by to. Converting to the same currency
// returns m unchanged without consulting the bank.
func (m Money) ExchangeTo(ctx context.Context, to any, opts ...ExchangeOption) (Money, error) {
	registry := currency.Default()
	if m.bank != nil {
		registry = m.bank.Registry()
	}

	target, err := registry.Wrap(to)
	if err != nil {
		return Money{}, err
	}
	if m.currency.Equal(target) {
		return m, nil
	}
	if m.bank == nil {
		return Money{}, ErrNoBank
	}

	var o ExchangeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return m.bank.ExchangeWith(ctx, m, target, o)
}
