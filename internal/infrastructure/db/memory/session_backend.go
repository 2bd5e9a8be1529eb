// Package memory holds process-local backends for development and tests.
package memory

import (
	"context"
	"maps"
	"sync"
)

// SessionBackend keeps sessions in a map. Contents are lost on restart.
type SessionBackend struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewSessionBackend() *SessionBackend {
	return &SessionBackend{data: make(map[string]map[string]string)}
}

func (b *SessionBackend) ReplaceAll(_ context.Context, key string, fields map[string]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = maps.Clone(fields)
	return nil
}

func (b *SessionBackend) GetAll(_ context.Context, key string) (map[string]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return maps.Clone(b.data[key]), nil
}

func (b *SessionBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
	return nil
}
