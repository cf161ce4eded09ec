package cache

import (
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"campus-events-api/internal/domain"
)

// EventCache keeps recently read event records in memory.
// It never holds participation counts; those are always read from the ledger.
//
// Every Invalidate bumps a per-event generation. A load that started before
// the bump is not written back, so a reader racing a writer cannot park the
// pre-write row in the cache.
type EventCache struct {
	cache *gocache.Cache
	ttl   time.Duration

	mu          sync.Mutex
	generations map[uuid.UUID]uint64
}

func NewEventCache(ttl, cleanupInterval time.Duration) *EventCache {
	return &EventCache{
		cache:       gocache.New(ttl, cleanupInterval),
		ttl:         ttl,
		generations: make(map[uuid.UUID]uint64),
	}
}

// Get returns a copy of the cached event so callers cannot mutate the cached value
func (c *EventCache) Get(id uuid.UUID) (*domain.Event, bool) {
	value, found := c.cache.Get(id.String())
	if !found {
		return nil, false
	}
	event, ok := value.(*domain.Event)
	if !ok {
		c.cache.Delete(id.String())
		return nil, false
	}
	return event.Clone(), true
}

// GetOrLoad returns the cached event or calls load and caches its result,
// unless the event was invalidated while load was running
func (c *EventCache) GetOrLoad(id uuid.UUID, load func() (*domain.Event, error)) (*domain.Event, error) {
	if event, ok := c.Get(id); ok {
		return event, nil
	}

	generation := c.Generation(id)
	event, err := load()
	if err != nil {
		return nil, err
	}
	c.SetIfCurrent(event, generation)
	return event, nil
}

// Generation returns the invalidation counter of an event
func (c *EventCache) Generation(id uuid.UUID) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[id]
}

// SetIfCurrent caches event only if it has not been invalidated since generation was read
func (c *EventCache) SetIfCurrent(event *domain.Event, generation uint64) bool {
	if event == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[event.ID] != generation {
		return false
	}
	c.cache.Set(event.ID.String(), event.Clone(), c.ttl)
	return true
}

// Set caches event unconditionally. Use it only with a row read inside the
// event's critical section; readers go through GetOrLoad.
func (c *EventCache) Set(event *domain.Event) {
	if event == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Set(event.ID.String(), event.Clone(), c.ttl)
}

// Invalidate must be called after every committed write to the event
func (c *EventCache) Invalidate(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[id]++
	c.cache.Delete(id.String())
}

func (c *EventCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Flush()
}

func (c *EventCache) Len() int {
	return c.cache.ItemCount()
}
