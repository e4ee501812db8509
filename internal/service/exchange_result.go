package service

import (
	"exchangebank/internal/money"
	"exchangebank/internal/rate"
)

// ConvertRequest describes a conversion. Amount is in major units of From.
// Date, Rate and Rounding are optional.
type ConvertRequest struct {
	Amount   string
	From     string
	To       string
	Date     string
	Rate     string
	Rounding string
}

// ConversionResult is a converted amount returned by the service layer.
type ConversionResult struct {
	From       string
	To         string
	Amount     string
	Fractional string
	Rate       *string // set when the request supplied an explicit rate
	Date       *string
}

func conversionResultFrom(src, dst money.Money, override *rate.Rate, date string) *ConversionResult {
	r := &ConversionResult{
		From:       src.Currency().ISOCode,
		To:         dst.Currency().ISOCode,
		Amount:     dst.Amount().String(),
		Fractional: dst.Fractional().String(),
	}
	if override != nil {
		v := override.String()
		r.Rate = &v
	}
	if date != "" {
		r.Date = &date
	}
	return r
}

// RateResult is a resolved or registered rate.
type RateResult struct {
	From string
	To   string
	Rate string
	Date *string
}

func rateResultFrom(from, to string, r rate.Rate, date string) *RateResult {
	res := &RateResult{From: from, To: to, Rate: r.String()}
	if date != "" {
		res.Date = &date
	}
	return res
}
