package api

import (
	"context"

	"exchangebank/internal/service"
)

// mockExchangeService implements service.ExchangeServiceInterface for testing.
type mockExchangeService struct {
	convertFunc       func(ctx context.Context, req service.ConvertRequest) (*service.ConversionResult, error)
	addRateFunc       func(ctx context.Context, from, to, rate string) (*service.RateResult, error)
	getRateFunc       func(ctx context.Context, from, to, date string) (*service.RateResult, error)
	requestImportFunc func(ctx context.Context) (string, error)
}

func (m *mockExchangeService) Convert(ctx context.Context, req service.ConvertRequest) (*service.ConversionResult, error) {
	return m.convertFunc(ctx, req)
}

func (m *mockExchangeService) AddRate(ctx context.Context, from, to, rate string) (*service.RateResult, error) {
	return m.addRateFunc(ctx, from, to, rate)
}

func (m *mockExchangeService) GetRate(ctx context.Context, from, to, date string) (*service.RateResult, error) {
	return m.getRateFunc(ctx, from, to, date)
}

func (m *mockExchangeService) RequestImport(ctx context.Context) (string, error) {
	return m.requestImportFunc(ctx)
}

func (m *mockExchangeService) ProcessImport(_ context.Context, _ string) error {
	return nil // Not used in handler tests
}
