package crm

import (
	"testing"
	"time"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

func strptr(s string) *string    { return &s }
func f64ptr(f float64) *float64  { return &f }
func day(d int) time.Time        { return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC) }
func at(d, h int) time.Time      { return time.Date(2026, 8, d, h, 0, 0, 0, time.UTC) }

func TestEnrich_PicksLatestQuotedContact(t *testing.T) {
	customers := []domain.Customer{{ID: 1, CompanyName: "Acme"}}
	contacts := []domain.Contact{
		{ID: 1, CustomerID: 1, ContactDate: day(1), QuotationStatus: strptr(domain.QuotationQuoted), QuotationAmount: f64ptr(50000)},
		{ID: 2, CustomerID: 1, ContactDate: day(3), QuotationStatus: strptr(domain.QuotationApproved), QuotationAmount: f64ptr(150000)},
		{ID: 3, CustomerID: 1, ContactDate: day(2), QuotationStatus: strptr(domain.QuotationAwaiting), QuotationAmount: f64ptr(90000)},
	}

	got := Enrich(customers, contacts)
	if got[0].CurrentQuotationStatus != domain.QuotationApproved {
		t.Fatalf("status = %q; want %q", got[0].CurrentQuotationStatus, domain.QuotationApproved)
	}
	if got[0].CurrentQuotationAmount != 150000 {
		t.Fatalf("amount = %v; want 150000", got[0].CurrentQuotationAmount)
	}
	if !got[0].CurrentQuotationDate.Equal(day(3)) {
		t.Fatalf("date = %v; want %v", got[0].CurrentQuotationDate, day(3))
	}
}

func TestEnrich_IgnoresNoQuoteContacts(t *testing.T) {
	customers := []domain.Customer{{ID: 1}}
	contacts := []domain.Contact{
		// Newest contact carries no quotation; the older quoted one wins.
		{ID: 1, CustomerID: 1, ContactDate: day(5), QuotationStatus: strptr(domain.QuotationNone)},
		{ID: 2, CustomerID: 1, ContactDate: day(2), QuotationStatus: strptr(domain.QuotationQuoted), QuotationAmount: f64ptr(80000)},
		{ID: 3, CustomerID: 1, ContactDate: day(6)}, // nil status
	}

	got := Enrich(customers, contacts)
	if got[0].CurrentQuotationStatus != domain.QuotationQuoted || got[0].CurrentQuotationAmount != 80000 {
		t.Fatalf("unexpected projection: %q %v", got[0].CurrentQuotationStatus, got[0].CurrentQuotationAmount)
	}
}

func TestEnrich_NoQualifyingContact_Sentinel(t *testing.T) {
	customers := []domain.Customer{{ID: 1}, {ID: 2}}
	contacts := []domain.Contact{
		{ID: 1, CustomerID: 1, ContactDate: day(1), QuotationStatus: strptr(domain.QuotationNone)},
	}

	got := Enrich(customers, contacts)
	for i := range got {
		if got[i].CurrentQuotationStatus != domain.QuotationNotYet {
			t.Fatalf("customer %d status = %q; want sentinel", got[i].ID, got[i].CurrentQuotationStatus)
		}
		if got[i].CurrentQuotationAmount != 0 || !got[i].CurrentQuotationDate.IsZero() {
			t.Fatalf("customer %d should have zero amount and date", got[i].ID)
		}
	}
}

func TestEnrich_DeterministicAcrossInputOrder(t *testing.T) {
	customers := []domain.Customer{{ID: 1}}
	// Same contact date; created_at then id break the tie.
	a := domain.Contact{ID: 1, CustomerID: 1, ContactDate: day(1), CreatedAt: at(1, 9), QuotationStatus: strptr(domain.QuotationQuoted), QuotationAmount: f64ptr(100)}
	b := domain.Contact{ID: 2, CustomerID: 1, ContactDate: day(1), CreatedAt: at(1, 12), QuotationStatus: strptr(domain.QuotationApproved), QuotationAmount: f64ptr(200)}

	fwd := Enrich(customers, []domain.Contact{a, b})
	rev := Enrich(customers, []domain.Contact{b, a})
	if fwd[0].CurrentQuotationStatus != rev[0].CurrentQuotationStatus ||
		fwd[0].CurrentQuotationAmount != rev[0].CurrentQuotationAmount {
		t.Fatalf("projection depends on input order: %+v vs %+v", fwd[0], rev[0])
	}
	if fwd[0].CurrentQuotationStatus != domain.QuotationApproved {
		t.Fatalf("tie should resolve to later created_at, got %q", fwd[0].CurrentQuotationStatus)
	}
}

func TestEnrich_IdempotentAndPure(t *testing.T) {
	customers := []domain.Customer{{ID: 1, CompanyName: "Acme"}}
	contacts := []domain.Contact{
		{ID: 1, CustomerID: 1, ContactDate: day(2), QuotationStatus: strptr(domain.QuotationQuoted), QuotationAmount: f64ptr(70000)},
	}

	once := Enrich(customers, contacts)
	twice := Enrich(once, contacts)
	if once[0].CurrentQuotationStatus != twice[0].CurrentQuotationStatus ||
		once[0].CurrentQuotationAmount != twice[0].CurrentQuotationAmount {
		t.Fatalf("enrichment not idempotent: %+v vs %+v", once[0], twice[0])
	}

	// The input slice must not be written through.
	if customers[0].CurrentQuotationStatus != "" {
		t.Fatalf("input slice was mutated: %+v", customers[0])
	}
}

func TestEnrich_NilAmountProjectsZero(t *testing.T) {
	customers := []domain.Customer{{ID: 1}}
	contacts := []domain.Contact{
		{ID: 1, CustomerID: 1, ContactDate: day(2), QuotationStatus: strptr(domain.QuotationAwaiting)},
	}
	got := Enrich(customers, contacts)
	if got[0].CurrentQuotationStatus != domain.QuotationAwaiting || got[0].CurrentQuotationAmount != 0 {
		t.Fatalf("nil amount should project zero: %+v", got[0])
	}
}
