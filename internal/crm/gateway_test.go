package crm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

func newGatewayServer(t *testing.T, h http.HandlerFunc) (*HTTPGateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	g := NewHTTPGateway(srv.URL+"/", time.Second, zerolog.Nop())
	return g, srv
}

func TestHTTPGateway_ListCustomers(t *testing.T) {
	g, _ := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/customers" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]domain.Customer{{ID: 1, CompanyName: "Acme"}})
	})

	got, err := g.ListCustomers(context.Background())
	if err != nil {
		t.Fatalf("ListCustomers: %v", err)
	}
	if len(got) != 1 || got[0].CompanyName != "Acme" {
		t.Fatalf("unexpected customers: %+v", got)
	}
}

func TestHTTPGateway_BulkContacts_404MapsToErrBulkUnavailable(t *testing.T) {
	g, _ := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := g.ListAllContacts(context.Background())
	if !errors.Is(err, ErrBulkUnavailable) {
		t.Fatalf("err = %v; want ErrBulkUnavailable", err)
	}
}

func TestHTTPGateway_ListCustomerContacts_PathAndDecode(t *testing.T) {
	g, _ := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/customers/42/contacts" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]domain.Contact{{ID: 7, CustomerID: 42}})
	})

	got, err := g.ListCustomerContacts(context.Background(), 42)
	if err != nil || len(got) != 1 || got[0].CustomerID != 42 {
		t.Fatalf("unexpected: got=%+v err=%v", got, err)
	}
}

func TestHTTPGateway_CreateContact_SendsIdempotencyKeyAndBody(t *testing.T) {
	g, _ := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/customers/5/contacts" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if k := r.Header.Get(HeaderIdempotencyKey); k != "key-1" {
			t.Errorf("idempotency key = %q", k)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["customer_status_update"] != "Customer" {
			t.Errorf("customer_status_update missing from body: %v", body)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(domain.Contact{ID: 9, CustomerID: 5})
	})

	req := ContactCreate{
		Contact:              domain.Contact{ContactType: "Call", ContactStatus: "Reached"},
		CustomerStatusUpdate: "Customer",
	}
	got, err := g.CreateContact(context.Background(), 5, req, "key-1")
	if err != nil || got.ID != 9 {
		t.Fatalf("CreateContact: got=%+v err=%v", got, err)
	}
}

func TestHTTPGateway_DeleteCustomer_NoBody(t *testing.T) {
	g, _ := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/customers/3" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	if err := g.DeleteCustomer(context.Background(), 3); err != nil {
		t.Fatalf("DeleteCustomer: %v", err)
	}
}

func TestHTTPGateway_TransportFailure(t *testing.T) {
	g := NewHTTPGateway("http://127.0.0.1:1", 200*time.Millisecond, zerolog.Nop())
	_, err := g.ListCustomers(context.Background())
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("err = %v; want ErrGatewayUnavailable", err)
	}
}

func TestHTTPGateway_BadPayloadIsErrDecode(t *testing.T) {
	g, _ := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	})
	_, err := g.ListCustomers(context.Background())
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("err = %v; want ErrDecode", err)
	}
}

func TestHTTPGateway_ServerErrorSurfacesStatus(t *testing.T) {
	g, _ := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := g.ListCustomers(context.Background())
	if err == nil || errors.Is(err, ErrBulkUnavailable) {
		t.Fatalf("expected plain status error, got %v", err)
	}
}

func TestHTTPGateway_FailureBodyMessageReachesCaller(t *testing.T) {
	g, _ := newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Company name is required"}`))
	})
	_, err := g.CreateCustomer(context.Background(), domain.Customer{})
	if err == nil || !strings.Contains(err.Error(), "Company name is required") {
		t.Fatalf("err = %v; want the backend's message in the error", err)
	}

	// Backends that use an "error" field instead are read the same way.
	g, _ = newGatewayServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"duplicate contact"}`))
	})
	_, err = g.CreateContact(context.Background(), 1, ContactCreate{}, "")
	if err == nil || !strings.Contains(err.Error(), "duplicate contact") {
		t.Fatalf("err = %v; want the error field surfaced", err)
	}
}

// Compile-time guard: the HTTP gateway satisfies the full Gateway contract.
var _ Gateway = (*HTTPGateway)(nil)
