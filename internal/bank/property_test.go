package bank

import (
	"context"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	"exchangebank/internal/currency"
	"exchangebank/internal/money"
	"exchangebank/internal/rounding"
	"exchangebank/internal/store/memory"
)

var subunitCurrencies = []currency.Currency{
	{ISOCode: "XSA", SubunitToUnit: 1},
	{ISOCode: "XSB", SubunitToUnit: 10},
	{ISOCode: "XSC", SubunitToUnit: 100},
	{ISOCode: "XSD", SubunitToUnit: 1000},
	{ISOCode: "XSE", SubunitToUnit: 5},
}

func subunitRegistry(t *rapid.T) *currency.Registry {
	reg := currency.NewRegistry()
	for _, c := range subunitCurrencies {
		if err := reg.Register(c); err != nil {
			t.Fatalf("register %s: %v", c.ISOCode, err)
		}
	}
	return reg
}

// drawRate draws a positive rate with up to 40 decimal places.
func drawRate(t *rapid.T) decimal.Decimal {
	units := rapid.Int64Range(1, 10_000_000_000).Draw(t, "rate_units")
	scale := rapid.Int32Range(0, 40).Draw(t, "rate_scale")
	return decimal.New(units, -scale)
}

func TestProperty_ConversionMatchesExactFormula(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reg := subunitRegistry(t)
		from := rapid.SampledFrom(subunitCurrencies).Draw(t, "from")
		to := rapid.SampledFrom(subunitCurrencies).Filter(func(c currency.Currency) bool {
			return c.ISOCode != from.ISOCode
		}).Draw(t, "to")
		amount := rapid.Int64Range(-1_000_000_000_000, 1_000_000_000_000).Draw(t, "fractional")
		r := drawRate(t)

		b, err := New(memory.New(), WithRegistry(reg))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := b.AddRate(context.Background(), from.ISOCode, to.ISOCode, r); err != nil {
			t.Fatal(err)
		}

		got, err := money.FromMinor(amount, from, b).ExchangeTo(context.Background(), to.ISOCode)
		if err != nil {
			t.Fatal(err)
		}

		// amount * (subunit_to / subunit_from) * rate, computed with rationals
		want := new(big.Rat).SetInt64(amount)
		want.Mul(want, big.NewRat(to.SubunitToUnit, from.SubunitToUnit))
		want.Mul(want, r.Rat())

		if got.Fractional().Rat().Cmp(want) != 0 {
			t.Fatalf("%d %s -> %s at %s: got %s, want %s",
				amount, from.ISOCode, to.ISOCode, r, got.Fractional(), want.FloatString(12))
		}
	})
}

func TestProperty_RoundedConversion(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reg := subunitRegistry(t)
		from := rapid.SampledFrom(subunitCurrencies).Draw(t, "from")
		to := rapid.SampledFrom(subunitCurrencies).Filter(func(c currency.Currency) bool {
			return c.ISOCode != from.ISOCode
		}).Draw(t, "to")
		amount := rapid.Int64Range(0, 1_000_000_000).Draw(t, "fractional")
		r := drawRate(t)

		policy, _ := rounding.Lookup(rounding.HalfUp)
		b, err := New(memory.New(), WithRegistry(reg), WithRounding(policy))
		if err != nil {
			t.Fatal(err)
		}

		got, err := money.FromMinor(amount, from, b).ExchangeTo(context.Background(), to.ISOCode, money.WithRate(r))
		if err != nil {
			t.Fatal(err)
		}

		exact := decimal.NewFromInt(amount).
			Mul(decimal.NewFromInt(to.SubunitToUnit)).
			Mul(r).
			DivRound(decimal.NewFromInt(from.SubunitToUnit), 64)
		want := exact.Round(0)

		if !got.Fractional().Equal(want) {
			t.Fatalf("got %s, want %s", got.Fractional(), want)
		}
		if !got.Fractional().Equal(got.Fractional().Truncate(0)) {
			t.Fatalf("rounded result %s is not integral", got.Fractional())
		}
	})
}

func TestProperty_SameCurrencyIsIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reg := subunitRegistry(t)
		c := rapid.SampledFrom(subunitCurrencies).Draw(t, "currency")
		units := rapid.Int64().Draw(t, "units")
		scale := rapid.Int32Range(0, 6).Draw(t, "scale")
		amount := decimal.New(units, -scale)

		s := new(MockDatelessStore)
		b, err := New(s, WithRegistry(reg))
		if err != nil {
			t.Fatal(err)
		}

		m := money.New(amount, reg.MustWrap(c.ISOCode), b)
		got, err := m.ExchangeTo(context.Background(), c.ISOCode)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(m) || got.Fractional().String() != amount.String() {
			t.Fatalf("got %s, want %s", got.Fractional(), amount)
		}
		if len(s.Calls) != 0 {
			t.Fatalf("store was called %d times", len(s.Calls))
		}
	})
}
