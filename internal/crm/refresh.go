package crm

import (
	"context"
	"sync"
	"time"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

// State is the refresh controller's lifecycle position.
type State int

const (
	// StateIdle: no auto refresh scheduled and nothing in flight.
	StateIdle State = iota
	// StateAutoRefreshScheduled: the ticker is armed and will reload on
	// the next interval while the app is visible.
	StateAutoRefreshScheduled
	// StateRefreshing: a reload is in flight.
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAutoRefreshScheduled:
		return "scheduled"
	case StateRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// Controller drives cache refreshes: a periodic tick while the app is
// visible, a staleness check when it becomes visible again, and immediate
// reloads after mutations or manual refreshes. Reloads are single-flight;
// a reload requested while one is in flight coalesces into a rerun once
// the current one finishes instead of stacking up.
type Controller struct {
	loader   *Loader
	cache    *Cache
	interval time.Duration
	onUpdate func([]domain.Customer)

	mu       sync.Mutex
	state    State
	visible  bool
	inflight bool
	rerun    bool
	seq      uint64 // completion ordering; stale completions are dropped
	latest   uint64
	ticking  bool

	stop     chan struct{}
	stopOnce sync.Once
}

// NewController builds a controller. onUpdate receives the enriched
// customer list after every applied reload; it may be nil.
func NewController(loader *Loader, cache *Cache, interval time.Duration, onUpdate func([]domain.Customer)) *Controller {
	return &Controller{
		loader:   loader,
		cache:    cache,
		interval: interval,
		onUpdate: onUpdate,
		visible:  true,
		stop:     make(chan struct{}),
	}
}

// State returns the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start arms the periodic refresh and blocks until Stop is called or ctx
// is done. Ticks while the app is hidden are skipped.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	c.ticking = true
	if c.state == StateIdle {
		c.state = StateAutoRefreshScheduled
	}
	c.mu.Unlock()

	t := time.NewTicker(c.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			c.disarm()
			return
		case <-c.stop:
			c.disarm()
			return
		case <-t.C:
			c.mu.Lock()
			visible := c.visible
			c.mu.Unlock()
			if visible {
				c.reload(ctx, false)
			}
		}
	}
}

// Stop halts the periodic refresh. Safe to call more than once.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Controller) disarm() {
	c.mu.Lock()
	c.ticking = false
	if c.state == StateAutoRefreshScheduled {
		c.state = StateIdle
	}
	c.mu.Unlock()
}

// SetVisible records visibility. Becoming visible with a stale cache
// triggers an immediate reload, mirroring a user returning to the app.
func (c *Controller) SetVisible(ctx context.Context, visible bool) {
	c.mu.Lock()
	was := c.visible
	c.visible = visible
	c.mu.Unlock()
	if visible && !was && c.cache.Stale() {
		c.reload(ctx, false)
	}
}

// Refresh invalidates the cache and reloads. Used for the manual refresh
// action.
func (c *Controller) Refresh(ctx context.Context) {
	c.cache.Invalidate()
	c.reload(ctx, true)
}

// NotifyMutation is called after a create, update or delete went through
// the gateway: the snapshot is stale by definition, so drop it and reload.
func (c *Controller) NotifyMutation(ctx context.Context) {
	c.cache.Invalidate()
	c.reload(ctx, true)
}

// reload performs one guarded load. While a load is in flight further
// requests either coalesce into a rerun (force) or are dropped (ticks).
func (c *Controller) reload(ctx context.Context, force bool) {
	c.mu.Lock()
	if c.inflight {
		if force {
			c.rerun = true
		}
		c.mu.Unlock()
		return
	}
	c.inflight = true
	c.state = StateRefreshing
	c.seq++
	my := c.seq
	c.mu.Unlock()

	customers, _, err := c.loader.Load(ctx)

	c.mu.Lock()
	c.inflight = false
	if c.ticking {
		c.state = StateAutoRefreshScheduled
	} else {
		c.state = StateIdle
	}
	// Deliver only in-order completions whose snapshot actually landed;
	// a load that lost to an invalidation is stale data.
	deliver := err == nil && my > c.latest && !c.cache.Stale()
	if deliver {
		c.latest = my
	}
	rerun := c.rerun
	c.rerun = false
	c.mu.Unlock()

	if deliver && c.onUpdate != nil {
		c.onUpdate(customers)
	}
	if rerun {
		c.reload(ctx, false)
	}
}
