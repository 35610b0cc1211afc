package registration

import (
	"time"

	"elite-gym/internal/catalog"
	"elite-gym/internal/observability/metrics"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Registry keeps the live registration flows, bounded in count and age.
type Registry struct {
	cache   *expirable.LRU[string, *Flow]
	catalog *catalog.Catalog
	opts    Options
	metrics *metrics.LeadMetrics
}

func NewRegistry(capacity int, ttl time.Duration, c *catalog.Catalog, opts Options, m *metrics.LeadMetrics) *Registry {
	return &Registry{
		cache:   expirable.NewLRU[string, *Flow](capacity, func(_ string, f *Flow) { f.expire() }, ttl),
		catalog: c,
		opts:    opts,
		metrics: m,
	}
}

// Open starts a flow on the featured plan.
func (r *Registry) Open() *Flow {
	f := NewFlow(uuid.New().String(), r.catalog, r.opts)
	r.cache.Add(f.ID(), f)
	r.metrics.ObserveSessionOpened("registration")
	return f
}

// Get returns a live flow and renews its lifetime. A flow the expiry sweep
// evicted between the lookup and the renewal is dropped again.
func (r *Registry) Get(id string) (*Flow, bool) {
	f, ok := r.cache.Get(id)
	if !ok {
		return nil, false
	}
	r.cache.Add(id, f)
	if f.wasEvicted() {
		r.cache.Remove(id)
		return nil, false
	}
	return f, true
}

// Close cancels and forgets a flow.
func (r *Registry) Close(id string) bool {
	f, ok := r.cache.Peek(id)
	if !ok {
		return false
	}
	f.Cancel()
	r.cache.Remove(id)
	return true
}

// Purge cancels and forgets every flow.
func (r *Registry) Purge() { r.cache.Purge() }

func (r *Registry) Len() int { return r.cache.Len() }
