package ingestion

import (
	"sync"
	"time"

	"github.com/electionwatch/candidate-dashboard/internal/models"
)

// Clock returns the current time
type Clock func() time.Time

// Snapshot is one normalized view of the collection
type Snapshot struct {
	Posts     []models.NormalizedPost
	FetchedAt time.Time
	Fetched   int
	Dropped   int
}

// Cache memoizes a single snapshot for a bounded time. The fetch it guards
// takes no arguments, so there is exactly one entry.
type Cache struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      Clock
	snapshot *Snapshot
	storedAt time.Time
}

// NewCache creates a cache whose entry expires ttl after it was stored
func NewCache(ttl time.Duration, now Clock) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{ttl: ttl, now: now}
}

// Get returns the stored snapshot if it has not expired
func (c *Cache) Get() (*Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot == nil {
		return nil, false
	}
	if c.now().Sub(c.storedAt) >= c.ttl {
		c.snapshot = nil
		return nil, false
	}
	return c.snapshot, true
}

// Put replaces the stored snapshot
func (c *Cache) Put(s *Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = s
	c.storedAt = c.now()
}

// Invalidate drops the stored snapshot
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = nil
}
