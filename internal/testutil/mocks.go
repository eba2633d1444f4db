package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/benmgr/wooster/internal/gcal"
	"github.com/benmgr/wooster/internal/orchestrator"
)

// MockCompleter is a mock language-model completion client.
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}

// MockCalendar is a mock of the orchestrator's calendar capability.
type MockCalendar struct {
	mock.Mock
}

func (m *MockCalendar) ListRange(ctx context.Context, timeMin, timeMax time.Time, maxResults int) ([]gcal.EventDetails, error) {
	args := m.Called(ctx, timeMin, timeMax, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gcal.EventDetails), args.Error(1)
}

func (m *MockCalendar) Create(ctx context.Context, input gcal.EventInput) (*gcal.EventDetails, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gcal.EventDetails), args.Error(1)
}

func (m *MockCalendar) Update(ctx context.Context, eventID string, input gcal.EventInput) (*gcal.EventDetails, error) {
	args := m.Called(ctx, eventID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gcal.EventDetails), args.Error(1)
}

func (m *MockCalendar) Delete(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

func (m *MockCalendar) Search(ctx context.Context, query string, timeMin, timeMax time.Time) ([]gcal.EventDetails, error) {
	args := m.Called(ctx, query, timeMin, timeMax)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gcal.EventDetails), args.Error(1)
}

// CalendarProvider returns the same calendar for every user.
func CalendarProvider(cal orchestrator.Calendar) orchestrator.Provider {
	return orchestrator.ProviderFunc(func(ctx context.Context, userID int64) (orchestrator.Calendar, error) {
		return cal, nil
	})
}

// NotLinkedProvider simulates a user with no stored credentials.
func NotLinkedProvider() orchestrator.Provider {
	return orchestrator.ProviderFunc(func(ctx context.Context, userID int64) (orchestrator.Calendar, error) {
		return nil, gcal.ErrNotLinked
	})
}
