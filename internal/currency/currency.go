// Package currency resolves currency identifiers to canonical currency descriptors.
package currency

import (
	"fmt"
	"strings"
)

// Currency is an immutable currency descriptor. Two currencies are equal when their ISO codes are equal.
type Currency struct {
	ISOCode       string
	Symbol        string
	Name          string
	SubunitToUnit int64
}

// Equal reports whether c and other share the same ISO code.
func (c Currency) Equal(other Currency) bool {
	return c.ISOCode == other.ISOCode
}

// IsZero reports whether c is the zero value.
func (c Currency) IsZero() bool {
	return c.ISOCode == ""
}

func (c Currency) String() string {
	return c.ISOCode
}

// InvalidCurrencyError is returned when an identifier cannot be resolved to a known currency.
type InvalidCurrencyError struct {
	Identifier any
}

func (e *InvalidCurrencyError) Error() string {
	return fmt.Sprintf("unknown currency %q", fmt.Sprint(e.Identifier))
}

// IsValidCode checks whether a string is a well-formed 3-letter currency code.
func IsValidCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	code = strings.ToUpper(code)
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
