package crm

import (
	"time"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

// Enrich projects each customer's current quotation state from its contact
// history. The current state comes from the latest contact that carries a
// real quotation (status present and not the "no quote" marker); customers
// without one get the "not yet quoted" sentinel, zero amount and zero date.
//
// Latest means the greatest contact date; exact ties fall back to the later
// created_at, then the higher id, so the projection is deterministic no
// matter how the input is ordered. The input slices are not mutated and
// enriching an already enriched list yields the same result.
func Enrich(customers []domain.Customer, contacts []domain.Contact) []domain.Customer {
	latest := make(map[int64]domain.Contact, len(customers))
	for _, ct := range contacts {
		if !ct.HasQuotation() {
			continue
		}
		cur, seen := latest[ct.CustomerID]
		if !seen || newerContact(ct, cur) {
			latest[ct.CustomerID] = ct
		}
	}

	out := make([]domain.Customer, len(customers))
	for i, cu := range customers {
		ct, ok := latest[cu.ID]
		if !ok {
			cu.CurrentQuotationStatus = domain.QuotationNotYet
			cu.CurrentQuotationAmount = 0
			cu.CurrentQuotationDate = time.Time{}
		} else {
			cu.CurrentQuotationStatus = *ct.QuotationStatus
			if ct.QuotationAmount != nil {
				cu.CurrentQuotationAmount = *ct.QuotationAmount
			} else {
				cu.CurrentQuotationAmount = 0
			}
			cu.CurrentQuotationDate = ct.ContactDate
		}
		out[i] = cu
	}
	return out
}

// newerContact reports whether a should replace b as the latest quotation
// carrier.
func newerContact(a, b domain.Contact) bool {
	if !a.ContactDate.Equal(b.ContactDate) {
		return a.ContactDate.After(b.ContactDate)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
