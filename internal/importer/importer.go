// Package importer provides rate importers for the bank.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"exchangebank/internal/bank"
)

// Entry is one rate to import.
type Entry struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
	Rate string `mapstructure:"rate"`
}

var (
	_ bank.Importer = Static(nil)
	_ bank.Importer = (*File)(nil)
)

// Static imports a fixed list of rates.
type Static []Entry

// Import adds every entry, stopping at the first failure.
func (s Static) Import(ctx context.Context, add bank.AddRateFunc) error {
	return addAll(ctx, add, s)
}

// File imports rates from a yaml, json or toml file with a top-level "rates" list.
type File struct {
	path string
}

// NewFile creates a File importer reading path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Import reads the file and adds its rates. The file is re-read on every call.
func (f *File) Import(ctx context.Context, add bank.AddRateFunc) error {
	entries, err := f.Load()
	if err != nil {
		return err
	}
	return addAll(ctx, add, entries)
}

// Load reads the file without importing it.
func (f *File) Load() ([]Entry, error) {
	v := viper.New()
	v.SetConfigFile(f.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read rates file %s: %w", f.path, err)
	}

	var entries []Entry
	if err := v.UnmarshalKey("rates", &entries); err != nil {
		return nil, fmt.Errorf("decode rates file %s: %w", f.path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("rates file %s: no rates found", f.path)
	}
	return entries, nil
}

func addAll(ctx context.Context, add bank.AddRateFunc, entries []Entry) error {
	var errs []error
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		d, err := decimal.NewFromString(strings.TrimSpace(e.Rate))
		if err != nil {
			errs = append(errs, fmt.Errorf("rate #%d %s->%s: invalid value %q", i+1, e.From, e.To, e.Rate))
			continue
		}
		if _, err := add(ctx, e.From, e.To, d); err != nil {
			errs = append(errs, fmt.Errorf("rate #%d %s->%s: %w", i+1, e.From, e.To, err))
		}
	}
	return errors.Join(errs...)
}
