// Package sessiontesting provides an in-process session backend for tests.
package sessiontesting

import (
	"context"
	"sync"
	"time"

	"github.com/sanLimbu/todo-app/internal"
	"github.com/sanLimbu/todo-app/internal/session"
)

// Memory is a session.Backend keeping everything in a map.
type Memory struct {
	mu       sync.Mutex
	sessions map[string]entry
}

type entry struct {
	data    session.Data
	expires time.Time
}

// NewMemory instantiates an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{sessions: map[string]entry{}}
}

func (m *Memory) Get(_ context.Context, id string) (session.Data, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok || time.Now().After(e.expires) {
		return session.Data{}, internal.NewErrorf(internal.ErrorCodeNotFound, "session not found")
	}

	return e.data, nil
}

func (m *Memory) Set(_ context.Context, id string, data session.Data, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data.Flashes = append([]session.Flash(nil), data.Flashes...)
	m.sessions[id] = entry{data: data, expires: time.Now().Add(ttl)}

	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)

	return nil
}

// Len returns the number of stored sessions.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}
