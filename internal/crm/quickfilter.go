package crm

import (
	"time"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

// QuickFilter names a canned predicate applied before the pipeline.
type QuickFilter string

const (
	// QuickHighValue keeps customers whose contract value exceeds the
	// configured threshold.
	QuickHighValue QuickFilter = "high_value"
	// QuickRecent keeps customers created within the last seven days.
	QuickRecent QuickFilter = "recent"
	// QuickNoContact keeps customers with no recorded contract value,
	// the ones nobody has closed anything with yet.
	QuickNoContact QuickFilter = "no_contact"
	// QuickOnlineLeads keeps customers whose lead source is Online.
	QuickOnlineLeads QuickFilter = "online_leads"
)

const recentWindow = 7 * 24 * time.Hour

// ApplyQuickFilter narrows customers to the named subset. Unknown names
// return the input unchanged. now anchors the recency window.
func ApplyQuickFilter(customers []domain.Customer, f QuickFilter, highValueThreshold float64, now time.Time) []domain.Customer {
	var keep func(domain.Customer) bool
	switch f {
	case QuickHighValue:
		keep = func(c domain.Customer) bool {
			return c.ContractValue != nil && *c.ContractValue > highValueThreshold
		}
	case QuickRecent:
		cutoff := now.Add(-recentWindow)
		keep = func(c domain.Customer) bool {
			return c.CreatedAt.After(cutoff)
		}
	case QuickNoContact:
		keep = func(c domain.Customer) bool {
			return c.ContractValue == nil || *c.ContractValue == 0
		}
	case QuickOnlineLeads:
		keep = func(c domain.Customer) bool {
			return c.LeadSource == domain.DefaultLeadSource
		}
	default:
		out := make([]domain.Customer, len(customers))
		copy(out, customers)
		return out
	}

	out := make([]domain.Customer, 0, len(customers))
	for _, c := range customers {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
