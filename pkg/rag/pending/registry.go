// Package pending holds suspended sessions awaiting a clarification answer.
// Entries are evicted after a TTL so abandoned sessions don't accumulate.
package pending

import (
	"time"

	"github.com/patrickmn/go-cache"

	"corrective-rag-be/pkg/rag/state"
)

const purgeInterval = 10 * time.Minute

// Registry is the keyed store of interrupted workflow states. Concurrent
// writes for the same session are last-writer-wins.
type Registry struct {
	store *cache.Cache
}

func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Registry{
		store: cache.New(ttl, purgeInterval),
	}
}

// Save suspends a session, replacing any previous suspension for the key.
func (r *Registry) Save(sessionID string, s *state.State) {
	r.store.Set(sessionID, s, cache.DefaultExpiration)
}

// Get returns the suspended state without removing it.
func (r *Registry) Get(sessionID string) (*state.State, bool) {
	value, found := r.store.Get(sessionID)
	if !found {
		return nil, false
	}
	return value.(*state.State), true
}

// Pop removes and returns the suspended state. Resumption consumes the entry;
// a second resume for the same key misses.
func (r *Registry) Pop(sessionID string) (*state.State, bool) {
	s, found := r.Get(sessionID)
	if !found {
		return nil, false
	}
	r.store.Delete(sessionID)
	return s, true
}

// Has reports whether a session is suspended.
func (r *Registry) Has(sessionID string) bool {
	_, found := r.store.Get(sessionID)
	return found
}

// Delete drops a suspended session.
func (r *Registry) Delete(sessionID string) {
	r.store.Delete(sessionID)
}
