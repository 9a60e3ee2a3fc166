package proximity

import (
	"fmt"
	"math"
	"sync"
	"time"
)

type cacheEntry struct {
	facilities []Facility
	expiresAt  time.Time
}

// resultCache keeps successful lookups for nearby coordinates, with lazy
// expiration.
type resultCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{entries: make(map[string]cacheEntry), ttl: ttl, now: time.Now}
}

// cacheKey rounds to three decimals (about 100 m).
func cacheKey(c Coordinates) string {
	round := func(f float64) float64 { return math.Round(f*1000) / 1000 }
	return fmt.Sprintf("%.3f,%.3f", round(c.Latitude), round(c.Longitude))
}

func (rc *resultCache) get(c Coordinates) ([]Facility, bool) {
	if rc == nil || rc.ttl <= 0 {
		return nil, false
	}
	key := cacheKey(c)
	rc.mu.Lock()
	defer rc.mu.Unlock()
	e, ok := rc.entries[key]
	if !ok {
		return nil, false
	}
	if rc.now().After(e.expiresAt) {
		delete(rc.entries, key)
		return nil, false
	}
	return append([]Facility(nil), e.facilities...), true
}

func (rc *resultCache) set(c Coordinates, facilities []Facility) {
	if rc == nil || rc.ttl <= 0 {
		return
	}
	rc.mu.Lock()
	rc.entries[cacheKey(c)] = cacheEntry{
		facilities: append([]Facility(nil), facilities...),
		expiresAt:  rc.now().Add(rc.ttl),
	}
	rc.mu.Unlock()
}
