// Package service implements the application operations on top of the exchange bank.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"exchangebank/internal/bank"
	"exchangebank/internal/currency"
	"exchangebank/internal/money"
	"exchangebank/internal/rate"
	"exchangebank/internal/rounding"
	"exchangebank/internal/store"
)

// ExchangeServiceInterface defines the operations exposed to transports.
type ExchangeServiceInterface interface {
	Convert(ctx context.Context, req ConvertRequest) (*ConversionResult, error)
	AddRate(ctx context.Context, from, to, rate string) (*RateResult, error)
	GetRate(ctx context.Context, from, to, date string) (*RateResult, error)
	RequestImport(ctx context.Context) (jobID string, err error)
	ProcessImport(ctx context.Context, jobID string) error
}

// Enqueuer schedules background import jobs.
type Enqueuer interface {
	EnqueueImportTask(ctx context.Context, payload ImportRatesPayload) error
}

// TaskTypeImportRates is the Asynq task type for rate import jobs.
const TaskTypeImportRates = "rates:import"

// ImportRatesPayload is the payload of rate import tasks.
type ImportRatesPayload struct {
	JobID string `json:"job_id"`
}

// ExchangeService converts money and manages rates through a bank.
type ExchangeService struct {
	bank     *bank.Bank
	enqueuer Enqueuer
	log      *zap.SugaredLogger
}

// NewExchangeService creates a new ExchangeService.
func NewExchangeService(b *bank.Bank, enqueuer Enqueuer, logger *zap.SugaredLogger) *ExchangeService {
	return &ExchangeService{
		bank:     b,
		enqueuer: enqueuer,
		log:      logger,
	}
}

// Convert exchanges an amount of major units between two currencies.
func (s *ExchangeService) Convert(ctx context.Context, req ConvertRequest) (*ConversionResult, error) {
	from, err := s.parseCurrency(req.From)
	if err != nil {
		return nil, err
	}
	to, err := s.parseCurrency(req.To)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	opts := []money.ExchangeOption{money.WithDate(date)}
	var override *rate.Rate
	if req.Rate != "" {
		r, err := parseRate(req.Rate)
		if err != nil {
			return nil, err
		}
		override = &r
		opts = append(opts, money.WithRate(r))
	}
	if req.Rounding != "" {
		policy, err := rounding.Lookup(req.Rounding)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRounding, req.Rounding)
		}
		opts = append(opts, money.WithRounding(roundingFunc(policy)))
	}

	src := money.FromMajor(amount, from, s.bank)
	dst, err := src.ExchangeTo(ctx, to, opts...)
	if err != nil {
		return nil, s.translate(err, "Conversion failed", "from", from.ISOCode, "to", to.ISOCode)
	}

	s.log.Infow("Converted", "from", from.ISOCode, "to", to.ISOCode, "amount", amount.String(), "result", dst.Amount().String())
	return conversionResultFrom(src, dst, override, req.Date), nil
}

// AddRate registers a rate for a currency pair.
func (s *ExchangeService) AddRate(ctx context.Context, fromCode, toCode, value string) (*RateResult, error) {
	from, err := s.parseCurrency(fromCode)
	if err != nil {
		return nil, err
	}
	to, err := s.parseCurrency(toCode)
	if err != nil {
		return nil, err
	}
	r, err := parseRate(value)
	if err != nil {
		return nil, err
	}

	added, err := s.bank.AddRate(ctx, from, to, r)
	if err != nil {
		return nil, s.translate(err, "AddRate failed", "from", from.ISOCode, "to", to.ISOCode)
	}

	s.log.Infow("Rate added", "from", from.ISOCode, "to", to.ISOCode, "rate", added.String())
	return rateResultFrom(from.ISOCode, to.ISOCode, added, ""), nil
}

// GetRate resolves the rate for a pair, optionally on a date.
func (s *ExchangeService) GetRate(ctx context.Context, fromCode, toCode, dateStr string) (*RateResult, error) {
	from, err := s.parseCurrency(fromCode)
	if err != nil {
		return nil, err
	}
	to, err := s.parseCurrency(toCode)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}

	if from.Equal(to) {
		return rateResultFrom(from.ISOCode, to.ISOCode, rate.MustNew(decimal.NewFromInt(1)), dateStr), nil
	}

	r, ok, err := s.bank.GetRate(ctx, from, to, date)
	if err != nil {
		return nil, s.translate(err, "GetRate failed", "from", from.ISOCode, "to", to.ISOCode)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", ErrUnknownRate, from.ISOCode, to.ISOCode)
	}
	return rateResultFrom(from.ISOCode, to.ISOCode, r, dateStr), nil
}

// RequestImport schedules a background rate import and returns its job ID.
func (s *ExchangeService) RequestImport(ctx context.Context) (string, error) {
	if !s.bank.HasImporter() {
		return "", ErrNoImporter
	}

	jobID := uuid.New().String()
	if err := s.enqueuer.EnqueueImportTask(ctx, ImportRatesPayload{JobID: jobID}); err != nil {
		s.log.Errorw("Failed to enqueue import task", "job_id", jobID, "error", err)
		return "", ErrInternalQueue
	}

	s.log.Infow("Enqueued import task", "job_id", jobID)
	return jobID, nil
}

// ProcessImport runs the bank importer (called by background worker).
func (s *ExchangeService) ProcessImport(ctx context.Context, jobID string) error {
	s.log.Infow("Processing import", "job_id", jobID)
	if err := s.bank.ImportRates(ctx); err != nil {
		return fmt.Errorf("import job %s: %w", jobID, err)
	}
	return nil
}

// translate maps bank errors onto service errors, logging the unexpected ones.
func (s *ExchangeService) translate(err error, msg string, kv ...any) error {
	var (
		unknown     *bank.UnknownRateError
		invalidRate *rate.InvalidRateValueError
		invalidCur  *currency.InvalidCurrencyError
	)
	switch {
	case errors.As(err, &unknown):
		if unknown.Err != nil {
			s.log.Warnw(msg, append(kv, "error", err)...)
		}
		return fmt.Errorf("%w: %s -> %s", ErrUnknownRate, unknown.From, unknown.To)
	case errors.As(err, &invalidRate):
		return fmt.Errorf("%w: %v", ErrInvalidRate, invalidRate)
	case errors.As(err, &invalidCur):
		return fmt.Errorf("%w: %v", ErrInvalidCurrency, invalidCur)
	case errors.Is(err, store.ErrReadOnly):
		return ErrReadOnlyStore
	default:
		s.log.Errorw(msg, append(kv, "error", err)...)
		return ErrInternal
	}
}

func roundingFunc(p rounding.Policy) rounding.Func {
	if !p.IsSet() {
		return func(d decimal.Decimal) decimal.Decimal { return d }
	}
	return p.Fn
}
