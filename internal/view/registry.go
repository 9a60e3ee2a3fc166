package view

import (
	"sync"
	"time"
)

type registryEntry struct {
	ctl      *Controller
	sid      string
	lastSeen time.Time
}

// Registry holds live controllers by view id. A controller is only handed
// out to the browser session that opened it, and is dropped after ttl
// without events.
type Registry struct {
	mu    sync.Mutex
	views map[string]*registryEntry
	ttl   time.Duration
	now   func() time.Time
	done  chan struct{}
	once  sync.Once
}

// NewRegistry creates a Registry. A positive sweep starts a background
// cleanup loop that must be stopped with Close.
func NewRegistry(ttl, sweep time.Duration) *Registry {
	r := &Registry{
		views: make(map[string]*registryEntry),
		ttl:   ttl,
		now:   time.Now,
		done:  make(chan struct{}),
	}
	if sweep > 0 {
		go r.cleanupLoop(sweep)
	}
	return r
}

// Add registers ctl as owned by browser session sid.
func (r *Registry) Add(sid string, ctl *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[ctl.ID()] = &registryEntry{ctl: ctl, sid: sid, lastSeen: r.now()}
}

// Get returns the controller with the given id if sid owns it and it has
// not expired.
func (r *Registry) Get(id, sid string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.views[id]
	if !ok || e.sid != sid {
		return nil, false
	}
	now := r.now()
	if r.expired(e, now) {
		delete(r.views, id)
		return nil, false
	}
	e.lastSeen = now
	return e.ctl, true
}

// Len returns the number of registered views, expired ones included until
// the next sweep.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// Close stops the cleanup loop. It is safe to call more than once.
func (r *Registry) Close() {
	r.once.Do(func() { close(r.done) })
}

func (r *Registry) expired(e *registryEntry, now time.Time) bool {
	return r.ttl > 0 && now.Sub(e.lastSeen) > r.ttl
}

func (r *Registry) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.cleanup()
		case <-r.done:
			return
		}
	}
}

func (r *Registry) cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for id, e := range r.views {
		if r.expired(e, now) {
			delete(r.views, id)
		}
	}
}
