package mocks

import (
	"context"

	"github.com/teich/phone-gate-bridge/domain"
)

// MockAllowlistSource implements domain.AllowlistSource for testing
type MockAllowlistSource struct {
	ResolveFunc func(ctx context.Context, phone string) (*domain.AllowedCaller, error)

	// ResolveCalls records each phone number passed to Resolve
	ResolveCalls []string
}

// NewMockAllowlistSource creates a new MockAllowlistSource with default behaviors
func NewMockAllowlistSource() *MockAllowlistSource {
	return &MockAllowlistSource{}
}

// Resolve looks up a caller in the allowlist
func (m *MockAllowlistSource) Resolve(ctx context.Context, phone string) (*domain.AllowedCaller, error) {
	m.ResolveCalls = append(m.ResolveCalls, phone)
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, phone)
	}
	// Default behavior: no caller is allowed
	return nil, nil
}

// Compile-time interface compliance verification
var _ domain.AllowlistSource = (*MockAllowlistSource)(nil)
