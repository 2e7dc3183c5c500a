package mocks

import (
	"context"
	"sync"

	"github.com/teich/phone-gate-bridge/domain"
)

// MockActivityLog implements domain.ActivityLog for testing. The default
// behavior is an in-memory append-only log.
type MockActivityLog struct {
	RecordFunc func(ctx context.Context, event *domain.CallEvent) error
	RecentFunc func(ctx context.Context, limit int) ([]domain.CallEvent, error)

	mu     sync.Mutex
	events []domain.CallEvent
}

// NewMockActivityLog creates a new MockActivityLog with default behaviors
func NewMockActivityLog() *MockActivityLog {
	return &MockActivityLog{}
}

// Record appends a call event
func (m *MockActivityLog) Record(ctx context.Context, event *domain.CallEvent) error {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	event.ID = uint(len(m.events) + 1)
	m.events = append(m.events, *event)
	return nil
}

// Recent returns at most limit recorded events, newest first
func (m *MockActivityLog) Recent(ctx context.Context, limit int) ([]domain.CallEvent, error) {
	if m.RecentFunc != nil {
		return m.RecentFunc(ctx, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CallEvent
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.events[i])
	}
	return out, nil
}

// Events returns every recorded event in append order
func (m *MockActivityLog) Events() []domain.CallEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.CallEvent, len(m.events))
	copy(out, m.events)
	return out
}

// Compile-time interface compliance verification
var _ domain.ActivityLog = (*MockActivityLog)(nil)
