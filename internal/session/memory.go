package session

import (
	"context"
	"sync"

	"github.com/xelth-com/loadboard/internal/models"
)

// Memory remembers where each client was, so a reload resumes the same session
type Memory interface {
	Load(ctx context.Context, clientID string) (models.LiveLoadingState, bool, error)
	Save(ctx context.Context, state models.LiveLoadingState) error
	Clear(ctx context.Context, clientID string) error
}

// InMemory is a process-local Memory
type InMemory struct {
	mu     sync.Mutex
	states map[string]models.LiveLoadingState
}

func NewInMemory() *InMemory {
	return &InMemory{states: make(map[string]models.LiveLoadingState)}
}

func (m *InMemory) Load(_ context.Context, clientID string) (models.LiveLoadingState, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[clientID]
	return s, ok, nil
}

func (m *InMemory) Save(_ context.Context, state models.LiveLoadingState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.ClientID] = state
	return nil
}

func (m *InMemory) Clear(_ context.Context, clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, clientID)
	return nil
}
