package emergency

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

type shareRepoMemory struct {
	mu     sync.RWMutex
	shares map[string][]byte
}

// NewShareRepoMemory returns an in-memory ShareRepository with the demo
// record shared under DemoToken.
func NewShareRepoMemory() ShareRepository {
	r := &shareRepoMemory{shares: make(map[string][]byte)}
	_ = r.Put(context.Background(), DemoToken, &View{PublicView: DemoRecord()})
	return r
}

// Values are stored encoded so that callers never share memory with the
// repository.
func (r *shareRepoMemory) GetByToken(_ context.Context, token string) (*View, error) {
	r.mu.RLock()
	data, ok := r.shares[token]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var v View
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode share %q: %w", token, err)
	}
	return &v, nil
}

func (r *shareRepoMemory) Put(_ context.Context, token string, v *View) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode share %q: %w", token, err)
	}
	r.mu.Lock()
	r.shares[token] = data
	r.mu.Unlock()
	return nil
}
