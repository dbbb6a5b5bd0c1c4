package crm

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

var csvHeader = []string{
	"Company Name", "Sales Person", "Customer Status", "Lead Source",
	"Phone", "Email", "Contract Value", "Quotation Status",
	"Quotation Amount", "Created",
}

var exportPrinter = message.NewPrinter(language.English)

// ExportCSV writes customers as CSV: a header row followed by one row per
// customer, in the order given (export after filtering and sorting to get
// the on-screen order). Monetary columns are rendered as Thai Baht.
func ExportCSV(w io.Writer, customers []domain.Customer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, c := range customers {
		row := []string{
			c.CompanyName,
			c.SalesPerson,
			c.CustomerStatus,
			c.LeadSource,
			c.PhoneNumber,
			c.Email,
			formatBaht(c.ContractValue),
			c.CurrentQuotationStatus,
			formatAmount(c.CurrentQuotationAmount),
			formatDate(c.CreatedAt),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatBaht(v *float64) string {
	if v == nil {
		return ""
	}
	return exportPrinter.Sprint(currency.Symbol(currency.THB.Amount(*v)))
}

func formatAmount(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
