package money

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"exchangebank/internal/currency"
)

type mockExchanger struct {
	mock.Mock
	registry *currency.Registry
}

func (m *mockExchanger) ExchangeWith(ctx context.Context, from Money, to currency.Currency, opts ExchangeOptions) (Money, error) {
	args := m.Called(ctx, from, to, opts)
	return args.Get(0).(Money), args.Error(1)
}

func (m *mockExchanger) Registry() *currency.Registry {
	return m.registry
}

func TestExchangeTo_SameCurrency(t *testing.T) {
	reg := currency.NewRegistry()
	bank := &mockExchanger{registry: reg}
	usd := reg.MustWrap("USD")

	m := New(decimal.RequireFromString("1000.5"), usd, bank)
	got, err := m.ExchangeTo(context.Background(), "usd", WithRate(2))

	require.NoError(t, err)
	assert.True(t, got.Equal(m))
	assert.Equal(t, "1000.5", got.Fractional().String())
	bank.AssertNotCalled(t, "ExchangeWith", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExchangeTo_ForwardsOptions(t *testing.T) {
	reg := currency.NewRegistry()
	bank := &mockExchanger{registry: reg}
	usd, eur := reg.MustWrap("USD"), reg.MustWrap("EUR")
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	m := FromMinor(1000, usd, bank)
	want := FromMinor(750, eur, bank)

	bank.On("ExchangeWith", mock.Anything, m, eur, mock.MatchedBy(func(o ExchangeOptions) bool {
		return o.Date.Equal(date) && o.Rate == 0.75 && o.Rounding != nil
	})).Return(want, nil).Once()

	got, err := m.ExchangeTo(context.Background(), "€",
		WithDate(date),
		WithRate(0.75),
		WithRounding(func(d decimal.Decimal) decimal.Decimal { return d.Round(0) }),
	)

	require.NoError(t, err)
	assert.True(t, got.Equal(want))
	bank.AssertExpectations(t)
}

func TestExchangeTo_InvalidTarget(t *testing.T) {
	reg := currency.NewRegistry()
	bank := &mockExchanger{registry: reg}

	_, err := FromMinor(1, reg.MustWrap("USD"), bank).ExchangeTo(context.Background(), "ZZZ")

	var invalid *currency.InvalidCurrencyError
	assert.True(t, errors.As(err, &invalid))
}

func TestExchangeTo_NoBank(t *testing.T) {
	usd := currency.Default().MustWrap("USD")

	same, err := FromMinor(5, usd, nil).ExchangeTo(context.Background(), "USD")
	require.NoError(t, err)
	assert.Equal(t, "5", same.Fractional().String())

	_, err = FromMinor(5, usd, nil).ExchangeTo(context.Background(), "EUR")
	assert.ErrorIs(t, err, ErrNoBank)
}

func TestAmount(t *testing.T) {
	reg := currency.NewRegistry()

	assert.Equal(t, "10.25", FromMinor(1025, reg.MustWrap("USD"), nil).Amount().String())
	assert.Equal(t, "1100", FromMinor(1100, reg.MustWrap("JPY"), nil).Amount().String())
	assert.Equal(t, "1.5", FromMinor(1500, reg.MustWrap("KWD"), nil).Amount().String())

	m := FromMajor(decimal.RequireFromString("10.25"), reg.MustWrap("USD"), nil)
	assert.Equal(t, "1025", m.Fractional().String())
	assert.Equal(t, "10.25 USD", m.String())
}
