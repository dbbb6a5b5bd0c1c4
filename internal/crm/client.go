package crm

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-crm-backend/internal/config"
	"github.com/tbourn/go-crm-backend/internal/domain"
)

// Client bundles the customer data layer behind one handle: the HTTP
// gateway, the TTL cache, the cache-first loader, and the refresh
// controller, all built from the configured knobs. Embedding programs use
// it instead of wiring the pieces by hand.
type Client struct {
	Gateway    Gateway
	Cache      *Cache
	Loader     *Loader
	Controller *Controller

	pageSize  int
	highValue float64
}

// NewClient builds the data layer from config. onUpdate receives the
// enriched customer list after every applied reload; it may be nil.
func NewClient(cfg config.CRMConfig, log zerolog.Logger, onUpdate func([]domain.Customer)) *Client {
	gw := NewHTTPGateway(cfg.GatewayBaseURL, cfg.GatewayTimeout, log)
	cache := NewCache(cfg.CacheTTL)
	loader := NewLoader(gw, cache, cfg.ContactBatchSize)
	ctrl := NewController(loader, cache, cfg.RefreshInterval, onUpdate)
	return &Client{
		Gateway:    gw,
		Cache:      cache,
		Loader:     loader,
		Controller: ctrl,
		pageSize:   cfg.DefaultPageSize,
		highValue:  cfg.HighValueThreshold,
	}
}

// Load returns the enriched customer list and the raw contact list,
// reading through the cache.
func (c *Client) Load(ctx context.Context) ([]domain.Customer, []domain.Contact, error) {
	return c.Loader.Load(ctx)
}

// Query loads the current snapshot and runs the filter/sort/paginate
// pipeline over it. A zero PerPage falls back to the configured default
// page size.
func (c *Client) Query(ctx context.Context, q Query) (Page, error) {
	customers, _, err := c.Loader.Load(ctx)
	if err != nil {
		return Page{}, err
	}
	if q.PerPage <= 0 {
		q.PerPage = c.pageSize
	}
	return Run(customers, q), nil
}

// QuickFiltered loads the current snapshot and applies one of the canned
// filters using the configured high-value threshold.
func (c *Client) QuickFiltered(ctx context.Context, f QuickFilter) ([]domain.Customer, error) {
	customers, _, err := c.Loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return ApplyQuickFilter(customers, f, c.highValue, time.Now()), nil
}

// Export writes the customers matching q (all pages) as CSV.
func (c *Client) Export(ctx context.Context, w io.Writer, q Query) error {
	customers, _, err := c.Loader.Load(ctx)
	if err != nil {
		return err
	}
	return ExportCSV(w, Sort(Filter(customers, q), q.SortKey))
}

// CreateCustomer forwards to the gateway and drops the now-stale snapshot.
func (c *Client) CreateCustomer(ctx context.Context, cust domain.Customer) (domain.Customer, error) {
	created, err := c.Gateway.CreateCustomer(ctx, cust)
	if err != nil {
		return domain.Customer{}, err
	}
	c.Controller.NotifyMutation(ctx)
	return created, nil
}

// UpdateCustomer forwards to the gateway and drops the now-stale snapshot.
func (c *Client) UpdateCustomer(ctx context.Context, id int64, cust domain.Customer) (domain.Customer, error) {
	updated, err := c.Gateway.UpdateCustomer(ctx, id, cust)
	if err != nil {
		return domain.Customer{}, err
	}
	c.Controller.NotifyMutation(ctx)
	return updated, nil
}

// DeleteCustomer forwards to the gateway and drops the now-stale snapshot.
func (c *Client) DeleteCustomer(ctx context.Context, id int64) error {
	if err := c.Gateway.DeleteCustomer(ctx, id); err != nil {
		return err
	}
	c.Controller.NotifyMutation(ctx)
	return nil
}

// CreateContact forwards to the gateway and drops the now-stale snapshot.
// idempotencyKey may be empty.
func (c *Client) CreateContact(ctx context.Context, customerID int64, req ContactCreate, idempotencyKey string) (domain.Contact, error) {
	created, err := c.Gateway.CreateContact(ctx, customerID, req, idempotencyKey)
	if err != nil {
		return domain.Contact{}, err
	}
	c.Controller.NotifyMutation(ctx)
	return created, nil
}
