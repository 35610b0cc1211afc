package funnel

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Registry keeps the live sessions, bounded in count and age. Evicted
// sessions are reset so their pending timers go quiet.
type Registry struct {
	cache *expirable.LRU[string, *Session]
	opts  Options
}

func NewRegistry(capacity int, ttl time.Duration, opts Options) *Registry {
	onEvict := func(_ string, s *Session) {
		s.mu.Lock()
		s.reset()
		s.evicted = true
		s.mu.Unlock()
	}
	return &Registry{
		cache: expirable.NewLRU[string, *Session](capacity, onEvict, ttl),
		opts:  opts,
	}
}

// Open creates a session and starts its greeting.
func (r *Registry) Open() *Session {
	s := NewSession(uuid.New().String(), r.opts)
	r.cache.Add(s.ID(), s)
	r.opts.Metrics.ObserveSessionOpened("funnel")
	s.Start()
	return s
}

// Get returns a live session and renews its lifetime. A session the expiry
// sweep evicted between the lookup and the renewal is dropped again.
func (r *Registry) Get(id string) (*Session, bool) {
	s, ok := r.cache.Get(id)
	if !ok {
		return nil, false
	}
	r.cache.Add(id, s)
	if s.wasEvicted() {
		r.cache.Remove(id)
		return nil, false
	}
	return s, true
}

// Close resets and forgets a session.
func (r *Registry) Close(id string) bool {
	s, ok := r.cache.Peek(id)
	if !ok {
		return false
	}
	s.Close()
	r.cache.Remove(id)
	return true
}

// Purge resets and forgets every session, stopping their pending timers.
func (r *Registry) Purge() { r.cache.Purge() }

func (r *Registry) Len() int { return r.cache.Len() }
