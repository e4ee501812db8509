// Package rounding provides named rounding policies applied to exact conversion results.
package rounding

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Func rounds an exact decimal amount of minor units.
type Func func(decimal.Decimal) decimal.Decimal

// Policy is a rounding function with a stable identifier, so it can be persisted and restored.
// The zero Policy means "no rounding".
type Policy struct {
	Name string
	Fn   Func
}

// Policy names.
const (
	None     = "none"
	HalfUp   = "half_up"
	HalfEven = "half_even"
	Floor    = "floor"
	Ceil     = "ceil"
	Truncate = "truncate"
)

var policies = map[string]Func{
	None:     nil,
	HalfUp:   func(d decimal.Decimal) decimal.Decimal { return d.Round(0) },
	HalfEven: func(d decimal.Decimal) decimal.Decimal { return d.RoundBank(0) },
	Floor:    func(d decimal.Decimal) decimal.Decimal { return d.Floor() },
	Ceil:     func(d decimal.Decimal) decimal.Decimal { return d.Ceil() },
	Truncate: func(d decimal.Decimal) decimal.Decimal { return d.Truncate(0) },
}

// Lookup returns the built-in policy registered under name. An empty name is treated as None.
func Lookup(name string) (Policy, error) {
	if name == "" {
		name = None
	}
	fn, ok := policies[name]
	if !ok {
		return Policy{}, fmt.Errorf("unknown rounding policy %q (known: %v)", name, Names())
	}
	return Policy{Name: name, Fn: fn}, nil
}

// Custom wraps an arbitrary function as a named policy. Custom policies cannot be restored
// from their name alone.
func Custom(name string, fn Func) Policy {
	return Policy{Name: name, Fn: fn}
}

// Names lists the built-in policy identifiers.
func Names() []string {
	names := make([]string, 0, len(policies))
	for n := range policies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IsSet reports whether p performs any rounding.
func (p Policy) IsSet() bool {
	return p.Fn != nil
}

// Identifier returns the name used to persist p.
func (p Policy) Identifier() string {
	if p.Name == "" {
		return None
	}
	return p.Name
}

// Apply rounds d, or returns it unchanged when p is unset.
func (p Policy) Apply(d decimal.Decimal) decimal.Decimal {
	if p.Fn == nil {
		return d
	}
	return p.Fn(d)
}
