package store

import (
	"context"
	"sync"
)

// MemoryBackend is an in-process Backend. Contents are lost on exit.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: map[string]string{}}
}

func (b *MemoryBackend) Name() string { return "memory" }

func (b *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.entries[key]
	return v, ok, nil
}

func (b *MemoryBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[key] = value
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, key)
	return nil
}
