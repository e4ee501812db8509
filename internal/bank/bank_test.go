package bank

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"exchangebank/internal/currency"
	"exchangebank/internal/money"
	"exchangebank/internal/rate"
	"exchangebank/internal/rounding"
	"exchangebank/internal/store"
	"exchangebank/internal/store/history"
	"exchangebank/internal/store/memory"
)

func newTestBank(t *testing.T, s any, opts ...Option) *Bank {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	b, err := New(s, append([]Option{WithLogger(logger.Sugar())}, opts...)...)
	require.NoError(t, err)
	return b
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNew_DetectsShape(t *testing.T) {
	assert.Equal(t, store.ShapeDateless, newTestBank(t, memory.New()).Shape())
	assert.Equal(t, store.ShapeDated, newTestBank(t, history.New()).Shape())
	assert.Equal(t, store.ShapeDated, newTestBank(t, new(MockDatedStore)).Shape())
}

func TestNew_UnsupportedStoreFailsAtAttachment(t *testing.T) {
	for _, s := range []any{badArityStore{}, struct{}{}, nil} {
		b, err := New(s)
		assert.Nil(t, b)
		var unsupported *store.UnsupportedStoreShapeError
		assert.True(t, errors.As(err, &unsupported), "store %T", s)
	}
}

func TestExchangeWith_Examples(t *testing.T) {
	ctx := context.Background()
	b := newTestBank(t, memory.New())
	_, err := b.AddRate(ctx, "USD", "EUR", 0.75)
	require.NoError(t, err)
	_, err = b.AddRate(ctx, "USD", "JPY", 110.0)
	require.NoError(t, err)

	usd, err := b.Money(decimal.NewFromInt(1000), "USD")
	require.NoError(t, err)

	t.Run("USD to EUR", func(t *testing.T) {
		got, err := usd.ExchangeTo(ctx, "EUR")
		require.NoError(t, err)
		assert.Equal(t, "EUR", got.Currency().ISOCode)
		assert.True(t, got.Fractional().Equal(dec("750")), "got %s", got.Fractional())
		assert.Equal(t, "7.5", got.Amount().String())
	})

	t.Run("USD to JPY", func(t *testing.T) {
		got, err := usd.ExchangeTo(ctx, "JPY")
		require.NoError(t, err)
		assert.True(t, got.Fractional().Equal(dec("1100")), "got %s", got.Fractional())
	})

	t.Run("unregistered pair", func(t *testing.T) {
		_, err := usd.ExchangeTo(ctx, "GBP")
		var unknown *UnknownRateError
		require.True(t, errors.As(err, &unknown))
		assert.Equal(t, "USD", unknown.From)
		assert.Equal(t, "GBP", unknown.To)
		assert.Nil(t, unknown.Err)
	})

	t.Run("string override is invalid", func(t *testing.T) {
		_, err := usd.ExchangeTo(ctx, "EUR", money.WithRate("abc"))
		var invalid *rate.InvalidRateValueError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, "abc", invalid.Value)
	})

	t.Run("unknown target currency", func(t *testing.T) {
		_, err := usd.ExchangeTo(ctx, "QQQ")
		var invalid *currency.InvalidCurrencyError
		assert.True(t, errors.As(err, &invalid))
	})
}

func TestExchangeWith_SameCurrencyNeverTouchesStore(t *testing.T) {
	s := new(MockDatelessStore)
	b := newTestBank(t, s, WithRounding(mustPolicy(t, rounding.HalfUp)))
	eur := b.Registry().MustWrap("EUR")

	m := money.New(dec("1234.5678"), eur, b)
	got, err := b.ExchangeWith(context.Background(), m, eur, money.ExchangeOptions{Rate: 2})

	require.NoError(t, err)
	assert.Equal(t, "1234.5678", got.Fractional().String(), "no rounding on a no-op conversion")
	s.AssertNotCalled(t, "GetRate", mock.Anything, mock.Anything, mock.Anything)
}

func TestExchangeWith_OverrideBypassesStore(t *testing.T) {
	s := new(MockDatedStore)
	b := newTestBank(t, s)
	usd := b.Registry().MustWrap("USD")

	t.Run("numeric", func(t *testing.T) {
		got, err := money.FromMinor(1000, usd, b).ExchangeTo(context.Background(), "EUR", money.WithRate(0.5))
		require.NoError(t, err)
		assert.True(t, got.Fractional().Equal(dec("500")))
	})

	t.Run("rate record", func(t *testing.T) {
		rec := rate.Record{From: "USD", To: "KWD", Value: dec("0.307"), Date: time.Now()}
		got, err := money.FromMinor(1000, usd, b).ExchangeTo(context.Background(), "KWD", money.WithRate(rec))
		require.NoError(t, err)
		// 1000 cents = 10 USD -> 3.07 KWD = 3070 fils
		assert.True(t, got.Fractional().Equal(dec("3070")), "got %s", got.Fractional())
	})

	s.AssertNotCalled(t, "GetRate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExchangeWith_InvalidOverrideFailsBeforeStore(t *testing.T) {
	s := new(MockDatelessStore)
	b := newTestBank(t, s)

	_, err := money.FromMinor(1, b.Registry().MustWrap("USD"), b).ExchangeTo(context.Background(), "EUR", money.WithRate(-3))
	assert.ErrorIs(t, err, rate.ErrNonPositive)
	s.AssertNotCalled(t, "GetRate", mock.Anything, mock.Anything, mock.Anything)
}

func TestExchangeWith_DatedStoreReceivesDate(t *testing.T) {
	s := new(MockDatedStore)
	date := time.Date(2023, 7, 14, 0, 0, 0, 0, time.UTC)
	s.On("GetRate", mock.Anything, "USD", "EUR", date).Return(rate.MustNew(dec("0.9")), true, nil).Once()
	b := newTestBank(t, s)

	got, err := money.FromMinor(1000, b.Registry().MustWrap("USD"), b).
		ExchangeTo(context.Background(), "EUR", money.WithDate(date))

	require.NoError(t, err)
	assert.True(t, got.Fractional().Equal(dec("900")))
	s.AssertExpectations(t)
}

func TestExchangeWith_DatelessStoreIgnoresDate(t *testing.T) {
	s := new(MockDatelessStore)
	s.On("GetRate", mock.Anything, "USD", "EUR").Return(rate.MustNew(dec("0.9")), true, nil).Once()
	b := newTestBank(t, s)

	got, err := money.FromMinor(1000, b.Registry().MustWrap("USD"), b).
		ExchangeTo(context.Background(), "EUR", money.WithDate(time.Now()))

	require.NoError(t, err)
	assert.True(t, got.Fractional().Equal(dec("900")))
	s.AssertExpectations(t)
}

func TestExchangeWith_StoreFailureIsUnknownRate(t *testing.T) {
	s := new(MockDatelessStore)
	s.On("GetRate", mock.Anything, "USD", "EUR").Return(rate.Rate{}, false, assert.AnError).Once()
	b := newTestBank(t, s)

	_, err := money.FromMinor(1000, b.Registry().MustWrap("USD"), b).ExchangeTo(context.Background(), "EUR")

	var unknown *UnknownRateError
	require.True(t, errors.As(err, &unknown))
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorIs(t, err, ErrStoreLookup)
	s.AssertNumberOfCalls(t, "GetRate", 1)
}

func TestExchangeWith_Rounding(t *testing.T) {
	ctx := context.Background()
	b := newTestBank(t, memory.New(), WithRounding(mustPolicy(t, rounding.HalfEven)))
	_, err := b.AddRate(ctx, "USD", "EUR", dec("0.7525"))
	require.NoError(t, err)
	usd := b.Registry().MustWrap("USD")

	// 1000 * 0.7525 = 752.5
	t.Run("engine default", func(t *testing.T) {
		got, err := money.FromMinor(1000, usd, b).ExchangeTo(ctx, "EUR")
		require.NoError(t, err)
		assert.Equal(t, "752", got.Fractional().String())
	})

	t.Run("per-call rounding wins", func(t *testing.T) {
		got, err := money.FromMinor(1000, usd, b).ExchangeTo(ctx, "EUR", money.WithRounding(func(d decimal.Decimal) decimal.Decimal {
			return d.Ceil()
		}))
		require.NoError(t, err)
		assert.Equal(t, "753", got.Fractional().String())
	})

	t.Run("no policy keeps exact value", func(t *testing.T) {
		exact := newTestBank(t, b.Store())
		got, err := money.FromMinor(1000, usd, exact).ExchangeTo(ctx, "EUR")
		require.NoError(t, err)
		assert.Equal(t, "752.5", got.Fractional().String())
	})
}

func TestExchangeWith_NonTerminatingSubunit(t *testing.T) {
	reg := currency.NewRegistry()
	require.NoError(t, reg.Register(currency.Currency{ISOCode: "XTR", SubunitToUnit: 3}))
	b := newTestBank(t, memory.New(), WithRegistry(reg))

	got, err := money.FromMinor(1, reg.MustWrap("XTR"), b).ExchangeTo(context.Background(), "USD", money.WithRate(1))
	require.NoError(t, err)
	// 1/3 of a dollar in cents
	assert.Equal(t, "33.3333333333333333333333333333", got.Fractional().String())
}

func TestExchangeWith_LongRateIsNotTruncated(t *testing.T) {
	b := newTestBank(t, memory.New())
	usd := b.Registry().MustWrap("USD")
	ctx := context.Background()

	tests := []struct {
		name string
		rate string
		want string
	}{
		{"31 decimals", "0.1234567890123456789012345678901", "0.1234567890123456789012345678901"},
		{"tiny rate", "1e-30", "0.000000000000000000000000000001"},
		{"40 decimals", "1.0000000000000000000000000000000000000001", "1.0000000000000000000000000000000000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := money.FromMinor(1, usd, b).ExchangeTo(ctx, "EUR", money.WithRate(dec(tt.rate)))
			require.NoError(t, err)
			assert.True(t, got.Fractional().Equal(dec(tt.want)), "got %s", got.Fractional())
			assert.Equal(t, tt.want, got.Fractional().String())
		})
	}
}

func TestDivideExact(t *testing.T) {
	tests := []struct {
		d    string
		by   int64
		want string
	}{
		{"752500", 1000, "752.5"},
		{"1", 5, "0.2"},
		{"1", 1024, "0.0009765625"},
		{"0.1234567890123456789012345678901", 100, "0.001234567890123456789012345678901"},
		{"100", 3, "33.3333333333333333333333333333"},
		{"0.5", 3, "0.16666666666666666666666666667"},
	}

	for _, tt := range tests {
		t.Run(tt.d+"/"+tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, divideExact(dec(tt.d), tt.by).String())
		})
	}
}

func TestAddRate(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes currencies and round-trips", func(t *testing.T) {
		s := memory.New()
		b := newTestBank(t, s)

		r, err := b.AddRate(ctx, "usd", "€", 1.24515)
		require.NoError(t, err)
		assert.Equal(t, "1.24515", r.String())

		got, ok, err := s.GetRate(ctx, "USD", "EUR")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, got.Equal(r))

		resolved, ok, err := b.GetRate(ctx, "USD", "EUR", time.Time{})
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, resolved.Equal(r))

		_, ok, _ = b.GetRate(ctx, "EUR", "USD", time.Time{})
		assert.False(t, ok, "no inverse is inferred")
	})

	t.Run("dated store round-trip for the same date", func(t *testing.T) {
		today := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
		b := newTestBank(t, history.New(history.WithClock(func() time.Time { return today })))

		_, err := b.AddRate(ctx, "USD", "CAD", dec("1.35"))
		require.NoError(t, err)

		got, ok, err := b.GetRate(ctx, "USD", "CAD", today)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "1.35", got.String())
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		b := newTestBank(t, memory.New())

		_, err := b.AddRate(ctx, "USD", "EUR", 0)
		assert.ErrorIs(t, err, rate.ErrNonPositive)

		_, err = b.AddRate(ctx, "USD", "EUR", nil)
		var invalid *rate.InvalidRateValueError
		assert.True(t, errors.As(err, &invalid))

		_, err = b.AddRate(ctx, "USD", "NOPE", 1)
		var badCurrency *currency.InvalidCurrencyError
		assert.True(t, errors.As(err, &badCurrency))
	})

	t.Run("read-only store", func(t *testing.T) {
		b := newTestBank(t, new(MockDatelessStore))
		_, err := b.AddRate(ctx, "USD", "EUR", 1)
		assert.ErrorIs(t, err, store.ErrReadOnly)
	})
}

func TestImportRates(t *testing.T) {
	ctx := context.Background()

	t.Run("no importer is a no-op", func(t *testing.T) {
		b := newTestBank(t, memory.New())
		assert.False(t, b.HasImporter())
		assert.NoError(t, b.ImportRates(ctx))
	})

	t.Run("importer is called once with the setter", func(t *testing.T) {
		calls := 0
		imp := ImporterFunc(func(ctx context.Context, add AddRateFunc) error {
			calls++
			if _, err := add(ctx, "USD", "EUR", 0.75); err != nil {
				return err
			}
			_, err := add(ctx, "EUR", "USD", dec("1.3333"))
			return err
		})
		s := memory.New()
		b := newTestBank(t, s, WithImporter(imp))

		require.NoError(t, b.ImportRates(ctx))
		assert.Equal(t, 1, calls)
		assert.Len(t, s.Records(), 2)
	})

	t.Run("importer error propagates", func(t *testing.T) {
		imp := ImporterFunc(func(ctx context.Context, add AddRateFunc) error {
			_, err := add(ctx, "USD", "EUR", "abc")
			return err
		})
		b := newTestBank(t, memory.New(), WithImporter(imp))

		var invalid *rate.InvalidRateValueError
		assert.True(t, errors.As(b.ImportRates(ctx), &invalid))
	})
}

func mustPolicy(t *testing.T, name string) rounding.Policy {
	t.Helper()
	p, err := rounding.Lookup(name)
	require.NoError(t, err)
	return p
}
