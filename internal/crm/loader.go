package crm

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

// Source is the read side of a Gateway: everything the loader needs to
// assemble a full snapshot.
type Source interface {
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	// ListAllContacts returns every contact that carries quotation info.
	// Implementations return ErrBulkUnavailable when the backend does not
	// offer the combined listing.
	ListAllContacts(ctx context.Context) ([]domain.Contact, error)
	ListCustomerContacts(ctx context.Context, customerID int64) ([]domain.Contact, error)
}

// Loader assembles enriched customer snapshots, reading through the cache.
type Loader struct {
	src       Source
	cache     *Cache
	batchSize int
}

// NewLoader wires a loader to its source and cache. batchSize bounds the
// per-customer fallback fan-out; values below 1 are raised to 1.
func NewLoader(src Source, cache *Cache, batchSize int) *Loader {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Loader{src: src, cache: cache, batchSize: batchSize}
}

// Load returns the enriched customer list and the raw contact list. A
// fresh cache answers without touching the network. On a miss, customers
// and the bulk contact listing are fetched concurrently; when the bulk
// listing is unavailable the loader falls back to per-customer fetches in
// sequential batches whose members run in parallel. A customer whose
// fallback fetch fails simply contributes no contacts.
//
// On success both raw lists are stored in the cache, unless the cache was
// invalidated while the load was in flight; the data is still returned to
// the caller either way. A failed load leaves the cache untouched.
func (l *Loader) Load(ctx context.Context) ([]domain.Customer, []domain.Contact, error) {
	if customers, contacts, ok := l.cache.Get(); ok {
		return Enrich(customers, contacts), contacts, nil
	}

	gen := l.cache.Generation()

	var (
		customers []domain.Customer
		contacts  []domain.Contact
		bulkErr   error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customers, err = l.src.ListCustomers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		contacts, err = l.src.ListAllContacts(gctx)
		if errors.Is(err, ErrBulkUnavailable) {
			bulkErr = err
			return nil
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if bulkErr != nil {
		contacts = l.contactsPerCustomer(ctx, customers)
	}

	l.cache.SetIfCurrent(gen, customers, contacts)
	return Enrich(customers, contacts), contacts, nil
}

// contactsPerCustomer fetches contact history one customer at a time, in
// sequential batches of l.batchSize with the members of each batch in
// flight together. Per-customer failures degrade to an empty history.
func (l *Loader) contactsPerCustomer(ctx context.Context, customers []domain.Customer) []domain.Contact {
	results := make([][]domain.Contact, len(customers))
	for start := 0; start < len(customers); start += l.batchSize {
		end := start + l.batchSize
		if end > len(customers) {
			end = len(customers)
		}
		var g errgroup.Group
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				got, err := l.src.ListCustomerContacts(ctx, customers[i].ID)
				if err != nil {
					return nil
				}
				results[i] = got
				return nil
			})
		}
		_ = g.Wait()
	}

	var out []domain.Contact
	for _, batch := range results {
		out = append(out, batch...)
	}
	return out
}
