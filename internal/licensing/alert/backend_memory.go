package alert

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend keeps alert state in process. State is lost on restart, so
// it is only meant for tests and single-shot tools.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]time.Time)}
}

func (b *MemoryBackend) LastSent(_ context.Context, key string) (time.Time, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	at, ok := b.entries[key]
	return at, ok, nil
}

func (b *MemoryBackend) Put(_ context.Context, key string, at time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[key] = at
	return nil
}
