package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exchangebank/internal/bank"
	"exchangebank/internal/currency"
	"exchangebank/internal/store/memory"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestStatic(t *testing.T) {
	s := memory.New()
	b, err := bank.New(s, bank.WithImporter(Static{
		{From: "USD", To: "EUR", Rate: "0.75"},
		{From: "usd", To: "jpy", Rate: "110"},
	}))
	require.NoError(t, err)

	require.NoError(t, b.ImportRates(context.Background()))

	r, ok, err := b.GetRate(context.Background(), "USD", "JPY", time.Time{})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "110", r.String())
	assert.Len(t, s.Records(), 2)
}

func TestStatic_CollectsErrors(t *testing.T) {
	s := memory.New()
	b, err := bank.New(s, bank.WithImporter(Static{
		{From: "USD", To: "EUR", Rate: "abc"},
		{From: "USD", To: "XXX", Rate: "1"},
		{From: "USD", To: "GBP", Rate: "0.79"},
	}))
	require.NoError(t, err)

	err = b.ImportRates(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid value "abc"`)
	var invalid *currency.InvalidCurrencyError
	assert.True(t, errors.As(err, &invalid))

	// valid entries are still added
	assert.Len(t, s.Records(), 1)
}

func TestFile_YAML(t *testing.T) {
	path := writeFile(t, "rates.yaml", `
rates:
  - from: USD
    to: EUR
    rate: 0.75
  - from: EUR
    to: USD
    rate: "1.3333"
`)

	s := memory.New()
	b, err := bank.New(s, bank.WithImporter(NewFile(path)))
	require.NoError(t, err)
	require.NoError(t, b.ImportRates(context.Background()))

	recs := s.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "1.3333", recs[0].Value.String())
	assert.Equal(t, "0.75", recs[1].Value.String())
}

func TestFile_JSON(t *testing.T) {
	path := writeFile(t, "rates.json", `{"rates":[{"from":"USD","to":"KWD","rate":"0.307"}]}`)

	entries, err := NewFile(path).Load()
	require.NoError(t, err)
	assert.Equal(t, []Entry{{From: "USD", To: "KWD", Rate: "0.307"}}, entries)
}

func TestFile_Errors(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "missing.yaml")).Load()
	assert.Error(t, err)

	_, err = NewFile(writeFile(t, "empty.yaml", "other: 1\n")).Load()
	assert.Error(t, err)
}
