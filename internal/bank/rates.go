package bank

import (
	"context"

	"exchangebank/internal/rate"
	"exchangebank/internal/store"
)

// AddRateFunc registers a rate between two currency identifiers. It is the setter handed to importers.
type AddRateFunc func(ctx context.Context, from, to any, r any) (rate.Rate, error)

// Importer populates a bank with rates through the supplied setter.
type Importer interface {
	Import(ctx context.Context, add AddRateFunc) error
}

// ImporterFunc adapts a function to Importer.
type ImporterFunc func(ctx context.Context, add AddRateFunc) error

// Import calls f.
func (f ImporterFunc) Import(ctx context.Context, add AddRateFunc) error {
	return f(ctx, add)
}

// AddRate registers r for from -> to and returns the normalized rate. No inverse rate is inferred.
func (b *Bank) AddRate(ctx context.Context, from, to any, r any) (rate.Rate, error) {
	fromISO, err := b.registry.ISOCode(from)
	if err != nil {
		return rate.Rate{}, err
	}
	toISO, err := b.registry.ISOCode(to)
	if err != nil {
		return rate.Rate{}, err
	}

	rt, ok, err := rate.Wrap(r)
	if err != nil {
		return rate.Rate{}, err
	}
	if !ok {
		return rate.Rate{}, &rate.InvalidRateValueError{Value: r}
	}
	if b.adder == nil {
		return rate.Rate{}, store.ErrReadOnly
	}

	if err := b.adder.AddRate(ctx, fromISO, toISO, rt); err != nil {
		return rate.Rate{}, err
	}
	return rt, nil
}

// HasImporter reports whether an importer is attached.
func (b *Bank) HasImporter() bool {
	return b.importer != nil
}

// ImportRates invokes the attached importer once. It is a no-op without an importer.
func (b *Bank) ImportRates(ctx context.Context) error {
	if b.importer == nil {
		return nil
	}

	var added int
	add := func(ctx context.Context, from, to any, r any) (rate.Rate, error) {
		rt, err := b.AddRate(ctx, from, to, r)
		if err == nil {
			added++
		}
		return rt, err
	}

	if err := b.importer.Import(ctx, add); err != nil {
		b.log.Errorw("Rate import failed", "added", added, "error", err)
		return err
	}
	b.log.Infow("Rates imported", "added", added)
	return nil
}
