// Package rate defines the exact-decimal exchange rate type and rate override validation.
package rate

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNonPositive indicates a rate that is zero or negative.
var ErrNonPositive = errors.New("rate must be strictly positive")

// ErrNotFinite is wrapped by InvalidRateValueError for NaN and infinite floats.
var ErrNotFinite = errors.New("rate must be a finite number")

// Rate is the number of target currency units per one unit of source currency.
// The zero value is not a valid rate.
type Rate struct {
	value decimal.Decimal
}

// New validates d and returns it as a Rate.
func New(d decimal.Decimal) (Rate, error) {
	if !d.IsPositive() {
		return Rate{}, &InvalidRateValueError{Value: d, Err: ErrNonPositive}
	}
	return Rate{value: d}, nil
}

// MustNew is like New but panics if d is not a valid rate.
func MustNew(d decimal.Decimal) Rate {
	r, err := New(d)
	if err != nil {
		panic(err)
	}
	return r
}

// Parse reads a rate from its decimal string form.
func Parse(s string) (Rate, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Rate{}, &InvalidRateValueError{Value: s, Err: err}
	}
	return New(d)
}

// Decimal returns the rate as an exact decimal.
func (r Rate) Decimal() decimal.Decimal {
	return r.value
}

// IsZero reports whether r is the (invalid) zero value.
func (r Rate) IsZero() bool {
	return r.value.IsZero()
}

// Equal compares two rates numerically, so 0.75 equals 0.750.
func (r Rate) Equal(other Rate) bool {
	return r.value.Equal(other.value)
}

func (r Rate) String() string {
	return r.value.String()
}

// Rate lets a Rate be passed wherever a Source is accepted.
func (r Rate) Rate() decimal.Decimal {
	return r.value
}

// Source is implemented by rate-shaped values, such as a historical rate record.
type Source interface {
	Rate() decimal.Decimal
}

// Record is a rate observed for a currency pair on a given date.
type Record struct {
	From  string
	To    string
	Value decimal.Decimal
	Date  time.Time
}

// Rate returns the recorded value.
func (r Record) Rate() decimal.Decimal {
	return r.Value
}

// InvalidRateValueError is returned when a supplied rate is neither numeric nor rate-shaped,
// or when its value is not strictly positive.
type InvalidRateValueError struct {
	Value any
	Err   error
}

func (e *InvalidRateValueError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("supplied rate %v is not valid: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("supplied rate %v is not valid: must be numeric or implement Rate() decimal.Decimal", e.Value)
}

func (e *InvalidRateValueError) Unwrap() error {
	return e.Err
}
