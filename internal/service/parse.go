package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"exchangebank/internal/currency"
	"exchangebank/internal/rate"
)

// DateLayout is the wire format of dates.
const DateLayout = "2006-01-02"

func (s *ExchangeService) parseCurrency(code string) (currency.Currency, error) {
	code = strings.TrimSpace(code)
	if !currency.IsValidCode(code) {
		return currency.Currency{}, fmt.Errorf("%w: %q is not a 3-letter code", ErrInvalidCurrency, code)
	}
	c, err := s.bank.Registry().Wrap(code)
	if err != nil {
		return currency.Currency{}, fmt.Errorf("%w: %s is not supported", ErrInvalidCurrency, strings.ToUpper(code))
	}
	return c, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q, expected YYYY-MM-DD", ErrInvalidDate, s)
	}
	return t, nil
}

func parseRate(s string) (rate.Rate, error) {
	r, err := rate.Parse(strings.TrimSpace(s))
	if err != nil {
		return rate.Rate{}, fmt.Errorf("%w: %q must be a positive decimal", ErrInvalidRate, s)
	}
	return r, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}
