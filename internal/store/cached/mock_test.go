package cached

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"exchangebank/internal/rate"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetRate(ctx context.Context, from, to string, date time.Time) (rate.Rate, bool, error) {
	args := m.Called(ctx, from, to, date)
	return args.Get(0).(rate.Rate), args.Bool(1), args.Error(2)
}

func (m *MockStore) AddRate(ctx context.Context, from, to string, r rate.Rate) error {
	args := m.Called(ctx, from, to, r)
	return args.Error(0)
}

type readOnlyStore struct{}

func (readOnlyStore) GetRate(context.Context, string, string, time.Time) (rate.Rate, bool, error) {
	return rate.Rate{}, false, nil
}
