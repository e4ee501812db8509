// Package store defines the rate store contracts the bank can attach to, and detects
// which lookup convention a store implements.
//
// Stores must be safe for concurrent reads, or the caller must serialize access.
// The bank performs no locking of its own.
package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"exchangebank/internal/rate"
)

// DatelessStore looks up the current rate for a pair of ISO codes.
type DatelessStore interface {
	GetRate(ctx context.Context, from, to string) (rate.Rate, bool, error)
}

// DatedStore looks up the rate in effect on a date. A zero date asks for the latest rate.
type DatedStore interface {
	GetRate(ctx context.Context, from, to string, date time.Time) (rate.Rate, bool, error)
}

// OptionalDateStore takes the date as an optional trailing argument. It is attached as a dated store.
type OptionalDateStore interface {
	GetRate(ctx context.Context, from, to string, date ...time.Time) (rate.Rate, bool, error)
}

// Adder registers a rate between two ISO codes.
type Adder interface {
	AddRate(ctx context.Context, from, to string, r rate.Rate) error
}

// Shape is the lookup convention a store was detected to implement.
type Shape int

// Supported shapes.
const (
	ShapeUnsupported Shape = iota
	ShapeDateless
	ShapeDated
)

func (s Shape) String() string {
	switch s {
	case ShapeDateless:
		return "dateless"
	case ShapeDated:
		return "dated"
	default:
		return "unsupported"
	}
}

// ErrReadOnly is returned when a rate is registered on a store without an AddRate method.
var ErrReadOnly = errors.New("rate store does not support adding rates")

// UnsupportedStoreShapeError is returned when a store's lookup matches no supported convention.
type UnsupportedStoreShapeError struct {
	Store string
	// Arity is the number of GetRate parameters the store declares, or -1 without a GetRate method.
	Arity int
	// Signature is the GetRate method type found on the store, empty without one.
	Signature string
}

func (e *UnsupportedStoreShapeError) Error() string {
	found := "no GetRate method"
	if e.Arity >= 0 {
		found = fmt.Sprintf("GetRate with %d parameters %s", e.Arity, e.Signature)
	}
	return fmt.Sprintf("unsupported rate store %s (%s): GetRate must take (ctx, from, to) or (ctx, from, to, date)", e.Store, found)
}

// unsupportedShape describes s for diagnostics only; detection itself never inspects methods.
func unsupportedShape(s any) *UnsupportedStoreShapeError {
	err := &UnsupportedStoreShapeError{Store: fmt.Sprintf("%T", s), Arity: -1}
	v := reflect.ValueOf(s)
	if !v.IsValid() {
		return err
	}
	if m := v.MethodByName("GetRate"); m.IsValid() {
		err.Arity = m.Type().NumIn()
		err.Signature = m.Type().String()
	}
	return err
}

// Lookup is a store bound to its detected calling convention.
type Lookup struct {
	shape    Shape
	dateless DatelessStore
	dated    DatedStore
	optional OptionalDateStore
}

// Detect inspects s once and returns a Lookup that dispatches with the matching arity.
func Detect(s any) (*Lookup, error) {
	switch st := s.(type) {
	case DatedStore:
		return &Lookup{shape: ShapeDated, dated: st}, nil
	case OptionalDateStore:
		return &Lookup{shape: ShapeDated, optional: st}, nil
	case DatelessStore:
		return &Lookup{shape: ShapeDateless, dateless: st}, nil
	default:
		return nil, unsupportedShape(s)
	}
}

// Shape returns the detected convention.
func (l *Lookup) Shape() Shape {
	return l.shape
}

// GetRate calls the store with the detected arity. Dateless stores ignore date.
func (l *Lookup) GetRate(ctx context.Context, from, to string, date time.Time) (rate.Rate, bool, error) {
	switch {
	case l.dated != nil:
		return l.dated.GetRate(ctx, from, to, date)
	case l.optional != nil:
		if date.IsZero() {
			return l.optional.GetRate(ctx, from, to)
		}
		return l.optional.GetRate(ctx, from, to, date)
	default:
		return l.dateless.GetRate(ctx, from, to)
	}
}
