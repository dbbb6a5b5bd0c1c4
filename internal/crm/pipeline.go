package crm

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

// DefaultPageSize is the page size used when a query does not set one.
const DefaultPageSize = 10

// Ellipsis is the marker value used inside Page.Window for a gap between
// page numbers.
const Ellipsis = -1

// Query describes one pass through the pipeline: free-text search, exact
// filters, advanced criteria, sort key and page selection. The zero value
// selects everything, unsorted beyond the default key, page one.
type Query struct {
	// Search matches case-insensitively as a substring against company
	// name, contact names, phone number and email; any hit keeps the row.
	Search string

	// Exact filters; empty means "any". QuotationStatus matches the
	// enriched projection, including the "not yet quoted" sentinel.
	SalesPerson     string
	CustomerStatus  string
	LeadSource      string
	QuotationStatus string

	// RequiredProducts matches as a case-insensitive substring of the
	// customer's required products; empty means "any".
	RequiredProducts string

	// Advanced maps field names to criteria. A plain key matches as a
	// case-insensitive substring. Keys with a "_from"/"_to" suffix bound
	// a numeric field, with a missing value treated as 0. The keys
	// "created_from" and "created_to" bound the creation date
	// (inclusive, YYYY-MM-DD).
	Advanced map[string]string

	// SortKey is "<field>_<direction>", e.g. "company_name_asc" or
	// "contract_value_desc". Unknown keys fall back to newest first.
	SortKey string

	Page    int
	PerPage int
}

// Page is one window of pipeline output.
type Page struct {
	Items      []domain.Customer
	Number     int   // clamped page number, 1-based
	Size       int   // requested page size
	TotalItems int   // rows after filtering
	TotalPages int   // at least 1
	Window     []int // page numbers to offer, Ellipsis for gaps
	Summary    string
}

// Run filters, sorts and paginates customers. The input is the enriched
// full list; it is never mutated, and running the same query twice yields
// the same page.
func Run(customers []domain.Customer, q Query) Page {
	filtered := Filter(customers, q)
	sorted := Sort(filtered, q.SortKey)
	return Paginate(sorted, q.Page, q.PerPage, len(customers))
}

// Filter applies the search, the exact filters and the advanced criteria.
// The result is a fresh slice; the input is left untouched.
func Filter(customers []domain.Customer, q Query) []domain.Customer {
	out := make([]domain.Customer, 0, len(customers))
	for _, c := range customers {
		if !matchSearch(c, q.Search) {
			continue
		}
		if q.SalesPerson != "" && c.SalesPerson != q.SalesPerson {
			continue
		}
		if q.CustomerStatus != "" && c.CustomerStatus != q.CustomerStatus {
			continue
		}
		if q.LeadSource != "" && c.LeadSource != q.LeadSource {
			continue
		}
		if q.QuotationStatus != "" && c.CurrentQuotationStatus != q.QuotationStatus {
			continue
		}
		if q.RequiredProducts != "" &&
			!strings.Contains(strings.ToLower(c.RequiredProducts), strings.ToLower(q.RequiredProducts)) {
			continue
		}
		if !matchAdvanced(c, q.Advanced) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchSearch(c domain.Customer, term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	for _, hay := range []string{c.CompanyName, c.ContactNames, c.PhoneNumber, c.Email} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

func matchAdvanced(c domain.Customer, criteria map[string]string) bool {
	for key, raw := range criteria {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		switch {
		case key == "created_from":
			if d, err := time.Parse("2006-01-02", val); err == nil {
				if dateOnly(c.CreatedAt).Before(d) {
					return false
				}
			}
		case key == "created_to":
			if d, err := time.Parse("2006-01-02", val); err == nil {
				if dateOnly(c.CreatedAt).After(d) {
					return false
				}
			}
		case strings.HasSuffix(key, "_from"):
			field := strings.TrimSuffix(key, "_from")
			if bound, err := strconv.ParseFloat(val, 64); err == nil {
				if numericField(c, field) < bound {
					return false
				}
			}
		case strings.HasSuffix(key, "_to"):
			field := strings.TrimSuffix(key, "_to")
			if bound, err := strconv.ParseFloat(val, 64); err == nil {
				if numericField(c, field) > bound {
					return false
				}
			}
		default:
			if !strings.Contains(strings.ToLower(textField(c, key)), strings.ToLower(val)) {
				return false
			}
		}
	}
	return true
}

// Sort orders customers by a "<field>_<direction>" key using a stable
// sort; equal rows keep their relative input order. The input slice is
// copied, not reordered in place. Unknown or empty keys sort newest first.
func Sort(customers []domain.Customer, key string) []domain.Customer {
	out := make([]domain.Customer, len(customers))
	copy(out, customers)

	field, desc := parseSortKey(key)
	sort.SliceStable(out, func(i, j int) bool {
		cmp := compareField(out[i], out[j], field)
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return out
}

func parseSortKey(key string) (field string, desc bool) {
	switch {
	case strings.HasSuffix(key, "_desc"):
		return strings.TrimSuffix(key, "_desc"), true
	case strings.HasSuffix(key, "_asc"):
		return strings.TrimSuffix(key, "_asc"), false
	default:
		return "created_at", true
	}
}

// compareField returns -1, 0 or +1. Dates compare as timestamps, money
// compares numerically with a missing value as 0, and everything else
// compares case-insensitively with null as the empty string.
func compareField(a, b domain.Customer, field string) int {
	switch field {
	case "created_at":
		return compareTime(a.CreatedAt, b.CreatedAt)
	case "updated_at":
		return compareTime(a.UpdatedAt, b.UpdatedAt)
	case "quotation_date":
		return compareTime(a.CurrentQuotationDate, b.CurrentQuotationDate)
	case "contract_value", "quotation_amount":
		av, bv := numericField(a, field), numericField(b, field)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	default:
		return strings.Compare(
			strings.ToLower(textField(a, field)),
			strings.ToLower(textField(b, field)),
		)
	}
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func numericField(c domain.Customer, field string) float64 {
	switch field {
	case "contract_value":
		if c.ContractValue == nil {
			return 0
		}
		return *c.ContractValue
	case "quotation_amount":
		return c.CurrentQuotationAmount
	default:
		return 0
	}
}

func textField(c domain.Customer, field string) string {
	switch field {
	case "company_name":
		return c.CompanyName
	case "sales_person":
		return c.SalesPerson
	case "customer_status":
		return c.CustomerStatus
	case "lead_source":
		return c.LeadSource
	case "phone_number":
		return c.PhoneNumber
	case "email":
		return c.Email
	case "location":
		return c.Location
	case "business_type":
		return c.BusinessType
	case "required_products":
		return c.RequiredProducts
	case "quotation_status":
		return c.CurrentQuotationStatus
	default:
		return ""
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Paginate slices one page out of the filtered list. Out-of-range page
// numbers clamp into [1, maxPage] rather than producing an empty page.
// grandTotal is the unfiltered list size reported in the summary.
func Paginate(filtered []domain.Customer, page, size, grandTotal int) Page {
	if size < 1 {
		size = DefaultPageSize
	}
	total := len(filtered)
	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	items := make([]domain.Customer, end-start)
	copy(items, filtered[start:end])

	var summary string
	if total == 0 {
		summary = fmt.Sprintf("Showing 0 of 0 customers (of %d total)", grandTotal)
	} else {
		summary = fmt.Sprintf("Showing %d-%d of %d customers (of %d total)", start+1, end, total, grandTotal)
	}

	return Page{
		Items:      items,
		Number:     page,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages,
		Window:     pageWindow(page, totalPages),
		Summary:    summary,
	}
}

// pageWindow lists the page numbers to offer: first and last always, the
// current page with two neighbors each side, and Ellipsis where pages are
// skipped.
func pageWindow(current, total int) []int {
	if total <= 1 {
		return []int{1}
	}
	out := make([]int, 0, 9)
	prev := 0
	for n := 1; n <= total; n++ {
		if n != 1 && n != total && (n < current-2 || n > current+2) {
			continue
		}
		if prev != 0 && n-prev > 1 {
			out = append(out, Ellipsis)
		}
		out = append(out, n)
		prev = n
	}
	return out
}
