package state

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

type InMemoryStateManager struct {
	lock   sync.RWMutex
	status *Status
}

func NewInMemoryStateManager() *InMemoryStateManager {
	return &InMemoryStateManager{
		status: &Status{Phase: PhaseLobby},
	}
}

func (m *InMemoryStateManager) Get(ctx context.Context) (*Status, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.status.copy(), nil
}

func (m *InMemoryStateManager) Set(ctx context.Context, status *Status) error {
	if status == nil {
		return fmt.Errorf("status is nil")
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	m.status = status.copy()
	return nil
}

func (s *Status) copy() *Status {
	c := &Status{
		Timestamp: s.Timestamp,
		Phase:     s.Phase,
		Players:   slices.Clone(s.Players),
	}
	if s.Session != nil {
		snap := *s.Session
		snap.Participants = slices.Clone(s.Session.Participants)
		c.Session = &snap
	}
	return c
}
