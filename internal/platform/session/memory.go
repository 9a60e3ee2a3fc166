package session

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend keeps flags in process memory. Entries idle for longer than
// the configured TTL are dropped by a background sweep.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]time.Time // sid -> last touched
	ttl     time.Duration
	done    chan struct{}
	once    sync.Once
	now     func() time.Time
}

// NewMemoryBackend starts a backend whose sweep runs every sweep interval.
func NewMemoryBackend(ttl, sweep time.Duration) *MemoryBackend {
	b := &MemoryBackend{
		entries: make(map[string]time.Time),
		ttl:     ttl,
		done:    make(chan struct{}),
		now:     time.Now,
	}
	if sweep > 0 {
		go b.cleanupLoop(sweep)
	}
	return b
}

func (b *MemoryBackend) Set(_ context.Context, sid string) error {
	b.mu.Lock()
	b.entries[sid] = b.now()
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) Get(_ context.Context, sid string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	touched, ok := b.entries[sid]
	if !ok {
		return false, nil
	}
	if b.expired(touched) {
		delete(b.entries, sid)
		return false, nil
	}
	b.entries[sid] = b.now()
	return true, nil
}

func (b *MemoryBackend) Delete(_ context.Context, sid string) error {
	b.mu.Lock()
	delete(b.entries, sid)
	b.mu.Unlock()
	return nil
}

// Len returns the number of stored flags.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Close stops the sweep. Safe to call more than once.
func (b *MemoryBackend) Close() {
	b.once.Do(func() { close(b.done) })
}

func (b *MemoryBackend) expired(touched time.Time) bool {
	return b.ttl > 0 && b.now().Sub(touched) > b.ttl
}

func (b *MemoryBackend) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			b.cleanup()
		}
	}
}

func (b *MemoryBackend) cleanup() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sid, touched := range b.entries {
		if b.expired(touched) {
			delete(b.entries, sid)
		}
	}
}
