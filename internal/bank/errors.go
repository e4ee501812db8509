package bank

import (
	"errors"
	"fmt"
)

// ErrStoreLookup marks a rate store failure during resolution.
var ErrStoreLookup = errors.New("rate store lookup failed")

// UnknownRateError is returned when no rate is known for a pair and none was supplied.
// Err holds the store failure, if the lookup failed rather than missed.
type UnknownRateError struct {
	From string
	To   string
	Err  error
}

func (e *UnknownRateError) Error() string {
	msg := fmt.Sprintf("no conversion rate known for '%s' -> '%s'", e.From, e.To)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UnknownRateError) Unwrap() error {
	return e.Err
}
