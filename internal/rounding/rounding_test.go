package rounding

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		policy string
		in     string
		want   string
	}{
		{HalfUp, "2.5", "3"},
		{HalfUp, "-2.5", "-3"},
		{HalfEven, "2.5", "2"},
		{HalfEven, "3.5", "4"},
		{Floor, "2.9", "2"},
		{Floor, "-2.1", "-3"},
		{Ceil, "2.1", "3"},
		{Truncate, "-2.9", "-2"},
		{None, "2.345", "2.345"},
	}

	for _, tc := range tests {
		t.Run(tc.policy+"/"+tc.in, func(t *testing.T) {
			p, err := Lookup(tc.policy)
			require.NoError(t, err)
			got := p.Apply(decimal.RequireFromString(tc.in))
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s", got)
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("nearest_nickel")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "half_even")
}

func TestPolicy_ZeroValue(t *testing.T) {
	var p Policy
	assert.False(t, p.IsSet())
	assert.Equal(t, None, p.Identifier())

	empty, err := Lookup("")
	require.NoError(t, err)
	assert.Equal(t, None, empty.Name)
	assert.False(t, empty.IsSet())
}
