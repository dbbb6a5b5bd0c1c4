package crm

import (
	"sync"
	"time"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

// Cache holds one snapshot of the full customer and contact lists with a
// freshness window. Both lists are replaced together; a load that fails
// never leaves a half-written snapshot behind.
//
// Invalidate bumps an internal generation counter. Stores carry the
// generation observed when their load began, so a slow load finishing
// after an invalidation cannot clobber newer state.
type Cache struct {
	mu        sync.Mutex
	ttl       time.Duration
	customers []domain.Customer
	contacts  []domain.Contact
	fetchedAt time.Time
	gen       uint64

	now func() time.Time // test seam
}

// NewCache returns an empty cache whose snapshots stay fresh for ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, now: time.Now}
}

// Get returns the cached lists and whether they are usable. ok is false
// when the cache has never been filled, was invalidated, or the snapshot
// is older than the TTL.
func (c *Cache) Get() (customers []domain.Customer, contacts []domain.Contact, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fetchedAt.IsZero() || c.customers == nil {
		return nil, nil, false
	}
	if c.now().Sub(c.fetchedAt) >= c.ttl {
		return nil, nil, false
	}
	return c.customers, c.contacts, true
}

// Stale reports whether Get would miss.
func (c *Cache) Stale() bool {
	_, _, ok := c.Get()
	return !ok
}

// Generation returns the current invalidation generation. Loaders read it
// before fetching and pass it to SetIfCurrent.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// SetIfCurrent atomically replaces both lists and stamps the snapshot
// time, but only when no invalidation happened since gen was observed.
// It reports whether the store was applied.
func (c *Cache) SetIfCurrent(gen uint64, customers []domain.Customer, contacts []domain.Contact) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.customers = customers
	c.contacts = contacts
	c.fetchedAt = c.now()
	return true
}

// Set unconditionally replaces the snapshot. Prefer SetIfCurrent when the
// data was loaded asynchronously.
func (c *Cache) Set(customers []domain.Customer, contacts []domain.Contact) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customers = customers
	c.contacts = contacts
	c.fetchedAt = c.now()
}

// Invalidate clears the snapshot and advances the generation so that
// in-flight loads started before this call are rejected on completion.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customers = nil
	c.contacts = nil
	c.fetchedAt = time.Time{}
	c.gen++
}
