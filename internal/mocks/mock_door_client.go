package mocks

import (
	"context"

	"github.com/teich/phone-gate-bridge/domain"
)

// UnlockCall records the arguments of one Unlock invocation
type UnlockCall struct {
	DoorID    string
	ActorID   string
	ActorName string
	Extra     map[string]string
}

// MockDoorUnlockClient implements domain.DoorUnlockClient for testing
type MockDoorUnlockClient struct {
	ListDoorsFunc  func(ctx context.Context) ([]domain.Door, error)
	FindDoorIDFunc func(ctx context.Context, doorName string) (string, error)
	UnlockFunc     func(ctx context.Context, doorID, actorID, actorName string, extra map[string]string) error

	// UnlockCalls records every Unlock invocation
	UnlockCalls []UnlockCall
}

// NewMockDoorUnlockClient creates a new MockDoorUnlockClient with default behaviors
func NewMockDoorUnlockClient() *MockDoorUnlockClient {
	return &MockDoorUnlockClient{}
}

// ListDoors lists doors known to the backend
func (m *MockDoorUnlockClient) ListDoors(ctx context.Context) ([]domain.Door, error) {
	if m.ListDoorsFunc != nil {
		return m.ListDoorsFunc(ctx)
	}
	// Default behavior: one door named Gate
	return []domain.Door{{ID: "door-1", Name: "Gate", FullName: "Site - Gate"}}, nil
}

// FindDoorID resolves a door name to its backend identifier
func (m *MockDoorUnlockClient) FindDoorID(ctx context.Context, doorName string) (string, error) {
	if m.FindDoorIDFunc != nil {
		return m.FindDoorIDFunc(ctx, doorName)
	}
	return "door-1", nil
}

// Unlock issues an unlock command
func (m *MockDoorUnlockClient) Unlock(ctx context.Context, doorID, actorID, actorName string, extra map[string]string) error {
	m.UnlockCalls = append(m.UnlockCalls, UnlockCall{
		DoorID:    doorID,
		ActorID:   actorID,
		ActorName: actorName,
		Extra:     extra,
	})
	if m.UnlockFunc != nil {
		return m.UnlockFunc(ctx, doorID, actorID, actorName, extra)
	}
	return nil
}

// Compile-time interface compliance verification
var _ domain.DoorUnlockClient = (*MockDoorUnlockClient)(nil)
