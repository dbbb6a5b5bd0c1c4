package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

// HeaderIdempotencyKey carries the client-chosen replay key on contact
// creation.
const HeaderIdempotencyKey = "Idempotency-Key"

// ContactCreate is the contact creation payload. CustomerStatusUpdate,
// when set, moves the customer to that status in the same transaction as
// the contact insert.
type ContactCreate struct {
	domain.Contact
	CustomerStatusUpdate string `json:"customer_status_update,omitempty"`
}

// Gateway is everything the data layer needs from the backend: the read
// side consumed by the loader plus the mutations that invalidate the
// cache.
type Gateway interface {
	Source
	CreateCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, c domain.Customer) (domain.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
	CreateContact(ctx context.Context, customerID int64, req ContactCreate, idempotencyKey string) (domain.Contact, error)
}

// HTTPGateway talks to the REST backend. All methods honor the context
// and time out via the underlying client.
type HTTPGateway struct {
	base string
	hc   *http.Client
	log  zerolog.Logger
}

// NewHTTPGateway builds a gateway for the backend at base (scheme and
// host, no trailing slash needed).
func NewHTTPGateway(base string, timeout time.Duration, log zerolog.Logger) *HTTPGateway {
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return &HTTPGateway{
		base: base,
		hc:   &http.Client{Timeout: timeout},
		log:  log,
	}
}

// ListCustomers fetches the full customer list.
func (g *HTTPGateway) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	var out []domain.Customer
	if err := g.do(ctx, http.MethodGet, "/api/customers", nil, &out, ""); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAllContacts fetches the combined contact listing. Backends without
// the endpoint yield ErrBulkUnavailable, which tells the loader to fall
// back to per-customer fetches.
func (g *HTTPGateway) ListAllContacts(ctx context.Context) ([]domain.Contact, error) {
	var out []domain.Contact
	err := g.do(ctx, http.MethodGet, "/api/customers/contacts/all", nil, &out, "")
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListCustomerContacts fetches one customer's contact history.
func (g *HTTPGateway) ListCustomerContacts(ctx context.Context, customerID int64) ([]domain.Contact, error) {
	var out []domain.Contact
	path := "/api/customers/" + strconv.FormatInt(customerID, 10) + "/contacts"
	if err := g.do(ctx, http.MethodGet, path, nil, &out, ""); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCustomer posts a new customer and returns the stored row.
func (g *HTTPGateway) CreateCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	var out domain.Customer
	if err := g.do(ctx, http.MethodPost, "/api/customers", c, &out, ""); err != nil {
		return domain.Customer{}, err
	}
	return out, nil
}

// UpdateCustomer replaces a customer's editable fields.
func (g *HTTPGateway) UpdateCustomer(ctx context.Context, id int64, c domain.Customer) (domain.Customer, error) {
	var out domain.Customer
	path := "/api/customers/" + strconv.FormatInt(id, 10)
	if err := g.do(ctx, http.MethodPut, path, c, &out, ""); err != nil {
		return domain.Customer{}, err
	}
	return out, nil
}

// DeleteCustomer removes a customer (contacts cascade server-side).
func (g *HTTPGateway) DeleteCustomer(ctx context.Context, id int64) error {
	path := "/api/customers/" + strconv.FormatInt(id, 10)
	return g.do(ctx, http.MethodDelete, path, nil, nil, "")
}

// CreateContact records a contact for a customer. idempotencyKey may be
// empty; when set, retries with the same key replay the original result
// instead of inserting twice.
func (g *HTTPGateway) CreateContact(ctx context.Context, customerID int64, req ContactCreate, idempotencyKey string) (domain.Contact, error) {
	var out domain.Contact
	path := "/api/customers/" + strconv.FormatInt(customerID, 10) + "/contacts"
	if err := g.do(ctx, http.MethodPost, path, req, &out, idempotencyKey); err != nil {
		return domain.Contact{}, err
	}
	return out, nil
}

func (g *HTTPGateway) do(ctx context.Context, method, path string, in, out any, idemKey string) error {
	var body *bytes.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idemKey != "" {
		req.Header.Set(HeaderIdempotencyKey, idemKey)
	}

	resp, err := g.hc.Do(req)
	if err != nil {
		g.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("gateway request failed")
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && path == "/api/customers/contacts/all" {
		return ErrBulkUnavailable
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if msg := errorMessage(resp.Body); msg != "" {
			return fmt.Errorf("gateway: %s %s: status %d: %s", method, path, resp.StatusCode, msg)
		}
		return fmt.Errorf("gateway: %s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// errorMessage pulls the message or error field out of a failure body so
// the backend's own wording reaches the caller. Non-JSON bodies yield "".
func errorMessage(r io.Reader) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 8<<10)).Decode(&body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
