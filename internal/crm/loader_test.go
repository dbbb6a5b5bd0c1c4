package crm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

// fakeSource is a scriptable Source that records its calls.
type fakeSource struct {
	mu sync.Mutex

	customers    []domain.Customer
	customersErr error

	bulk    []domain.Contact
	bulkErr error

	perCustomer    map[int64][]domain.Contact
	perCustomerErr map[int64]error

	listCustomersCalls int
	bulkCalls          int
	perCustomerCalls   []int64

	inFlight    int
	maxInFlight int
	delay       time.Duration
}

func (f *fakeSource) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	f.mu.Lock()
	f.listCustomersCalls++
	f.mu.Unlock()
	return f.customers, f.customersErr
}

func (f *fakeSource) ListAllContacts(ctx context.Context) ([]domain.Contact, error) {
	f.mu.Lock()
	f.bulkCalls++
	f.mu.Unlock()
	return f.bulk, f.bulkErr
}

func (f *fakeSource) ListCustomerContacts(ctx context.Context, customerID int64) ([]domain.Contact, error) {
	f.mu.Lock()
	f.perCustomerCalls = append(f.perCustomerCalls, customerID)
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if err, ok := f.perCustomerErr[customerID]; ok {
		return nil, err
	}
	return f.perCustomer[customerID], nil
}

func TestLoader_FreshCacheSkipsNetwork(t *testing.T) {
	cache := NewCache(time.Hour)
	cache.Set([]domain.Customer{{ID: 1}}, []domain.Contact{{ID: 10, CustomerID: 1}})

	src := &fakeSource{}
	l := NewLoader(src, cache, 10)

	customers, contacts, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(customers) != 1 || len(contacts) != 1 {
		t.Fatalf("unexpected snapshot: %d customers, %d contacts", len(customers), len(contacts))
	}
	if src.listCustomersCalls != 0 || src.bulkCalls != 0 {
		t.Fatalf("fresh cache hit must not touch the source: %d/%d calls", src.listCustomersCalls, src.bulkCalls)
	}
}

func TestLoader_MissFetchesAndFillsCache(t *testing.T) {
	cache := NewCache(time.Hour)
	src := &fakeSource{
		customers: []domain.Customer{{ID: 1}},
		bulk:      []domain.Contact{{ID: 10, CustomerID: 1, ContactDate: day(1), QuotationStatus: strptr(domain.QuotationQuoted), QuotationAmount: f64ptr(1000)}},
	}
	l := NewLoader(src, cache, 10)

	customers, _, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if customers[0].CurrentQuotationStatus != domain.QuotationQuoted {
		t.Fatalf("loader should return enriched customers, got %+v", customers[0])
	}
	if _, _, ok := cache.Get(); !ok {
		t.Fatalf("successful load should fill the cache")
	}

	// Second load answers from cache.
	if _, _, err := l.Load(context.Background()); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if src.listCustomersCalls != 1 {
		t.Fatalf("expected one customer fetch, got %d", src.listCustomersCalls)
	}
}

func TestLoader_BulkUnavailable_FallsBackInBatches(t *testing.T) {
	const n = 23
	customers := make([]domain.Customer, n)
	per := make(map[int64][]domain.Contact, n)
	for i := range customers {
		id := int64(i + 1)
		customers[i] = domain.Customer{ID: id}
		per[id] = []domain.Contact{{ID: id * 100, CustomerID: id}}
	}

	src := &fakeSource{
		customers:   customers,
		bulkErr:     ErrBulkUnavailable,
		perCustomer: per,
		delay:       2 * time.Millisecond,
	}
	cache := NewCache(time.Hour)
	l := NewLoader(src, cache, 10)

	_, contacts, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(contacts) != n {
		t.Fatalf("fallback gathered %d contacts; want %d", len(contacts), n)
	}
	if len(src.perCustomerCalls) != n {
		t.Fatalf("fallback made %d per-customer calls; want %d", len(src.perCustomerCalls), n)
	}
	// Batches run sequentially, so concurrency never exceeds the batch size.
	if src.maxInFlight > 10 {
		t.Fatalf("fallback concurrency %d exceeded batch size 10", src.maxInFlight)
	}
}

func TestLoader_FallbackErrorDegradesToEmpty(t *testing.T) {
	src := &fakeSource{
		customers: []domain.Customer{{ID: 1}, {ID: 2}},
		bulkErr:   ErrBulkUnavailable,
		perCustomer: map[int64][]domain.Contact{
			1: {{ID: 100, CustomerID: 1}},
		},
		perCustomerErr: map[int64]error{
			2: errors.New("boom"),
		},
	}
	cache := NewCache(time.Hour)
	l := NewLoader(src, cache, 10)

	_, contacts, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("a per-customer failure must not fail the load: %v", err)
	}
	if len(contacts) != 1 || contacts[0].CustomerID != 1 {
		t.Fatalf("expected only customer 1's contacts, got %+v", contacts)
	}
}

func TestLoader_FetchErrorLeavesCacheUntouched(t *testing.T) {
	cache := NewCache(time.Hour)
	src := &fakeSource{customersErr: errors.New("down")}
	l := NewLoader(src, cache, 10)

	if _, _, err := l.Load(context.Background()); err == nil {
		t.Fatalf("expected load error")
	}
	if _, _, ok := cache.Get(); ok {
		t.Fatalf("failed load must not populate the cache")
	}
}

func TestLoader_InvalidationDuringFlightRejectsStore(t *testing.T) {
	cache := NewCache(time.Hour)
	release := make(chan struct{})
	src := &blockingSource{release: release, started: make(chan struct{})}
	l := NewLoader(src, cache, 10)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, _, err := l.Load(context.Background()); err != nil {
			t.Errorf("Load: %v", err)
		}
	}()

	<-src.started
	cache.Invalidate() // something mutated while the load was in flight
	close(release)
	<-done

	// The data is returned to the caller, but the cache stays empty so the
	// next read refetches.
	if _, _, ok := cache.Get(); ok {
		t.Fatalf("store started before invalidation must be rejected")
	}
}

// blockingSource parks ListCustomers until released, to order events.
type blockingSource struct {
	release chan struct{}
	started chan struct{}
}

func (b *blockingSource) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	close(b.started)
	<-b.release
	return []domain.Customer{{ID: 1}}, nil
}

func (b *blockingSource) ListAllContacts(ctx context.Context) ([]domain.Contact, error) {
	return nil, nil
}

func (b *blockingSource) ListCustomerContacts(ctx context.Context, customerID int64) ([]domain.Contact, error) {
	return nil, nil
}
