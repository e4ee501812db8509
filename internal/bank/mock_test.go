package bank

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"exchangebank/internal/rate"
)

type MockDatelessStore struct {
	mock.Mock
}

func (m *MockDatelessStore) GetRate(ctx context.Context, from, to string) (rate.Rate, bool, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(rate.Rate), args.Bool(1), args.Error(2)
}

type MockDatedStore struct {
	mock.Mock
}

func (m *MockDatedStore) GetRate(ctx context.Context, from, to string, date time.Time) (rate.Rate, bool, error) {
	args := m.Called(ctx, from, to, date)
	return args.Get(0).(rate.Rate), args.Bool(1), args.Error(2)
}

func (m *MockDatedStore) AddRate(ctx context.Context, from, to string, r rate.Rate) error {
	args := m.Called(ctx, from, to, r)
	return args.Error(0)
}

// badArityStore looks up with an extra argument and matches no supported convention.
type badArityStore struct{}

func (badArityStore) GetRate(_ context.Context, _, _ string, _ time.Time, _ string) (rate.Rate, bool, error) {
	return rate.Rate{}, false, nil
}
