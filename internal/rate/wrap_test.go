package rate

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"float64", 0.75, "0.75"},
		{"float32", float32(1.5), "1.5"},
		{"int", 110, "110"},
		{"int64", int64(3), "3"},
		{"uint32", uint32(7), "7"},
		{"decimal", decimal.RequireFromString("1.24515"), "1.24515"},
		{"rate", MustNew(decimal.RequireFromString("0.803115")), "0.803115"},
		{"record", Record{From: "USD", To: "EUR", Value: decimal.RequireFromString("0.91"), Date: time.Now()}, "0.91"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, ok, err := Wrap(tc.in)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.True(t, r.Decimal().Equal(decimal.RequireFromString(tc.want)), "got %s", r)
		})
	}
}

func TestWrap_Absent(t *testing.T) {
	_, ok, err := Wrap(nil)
	assert.NoError(t, err)
	assert.False(t, ok)

	var p *decimal.Decimal
	_, ok, err = Wrap(p)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestWrap_Invalid(t *testing.T) {
	t.Run("string is not numeric", func(t *testing.T) {
		_, _, err := Wrap("abc")
		var invalid *InvalidRateValueError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, "abc", invalid.Value)
		assert.Contains(t, err.Error(), "must be numeric or implement Rate()")
	})

	t.Run("numeric string is still rejected", func(t *testing.T) {
		_, _, err := Wrap("0.75")
		assert.Error(t, err)
	})

	t.Run("struct without accessor", func(t *testing.T) {
		_, _, err := Wrap(struct{ X int }{1})
		assert.Error(t, err)
	})

	for _, v := range []any{0, -1, 0.0, decimal.NewFromInt(-2)} {
		_, _, err := Wrap(v)
		assert.ErrorIs(t, err, ErrNonPositive, "value %v", v)
	}

	t.Run("non-finite floats", func(t *testing.T) {
		for _, v := range []any{
			math.NaN(),
			math.Inf(1),
			math.Inf(-1),
			float32(math.NaN()),
			float32(math.Inf(1)),
			float32(math.Inf(-1)),
		} {
			var (
				r   Rate
				ok  bool
				err error
			)
			require.NotPanics(t, func() { r, ok, err = Wrap(v) }, "value %v", v)
			var invalid *InvalidRateValueError
			require.True(t, errors.As(err, &invalid), "value %v", v)
			assert.ErrorIs(t, err, ErrNotFinite)
			assert.False(t, ok)
			assert.True(t, r.IsZero())
		}
	})
}

func TestParse(t *testing.T) {
	r, err := Parse("18.7543")
	require.NoError(t, err)
	assert.Equal(t, "18.7543", r.String())

	_, err = Parse("abc")
	var invalid *InvalidRateValueError
	assert.True(t, errors.As(err, &invalid))

	_, err = Parse("0")
	assert.ErrorIs(t, err, ErrNonPositive)
}
