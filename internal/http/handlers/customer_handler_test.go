package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crm-backend/internal/domain"
	"github.com/tbourn/go-crm-backend/internal/repo"
	"github.com/tbourn/go-crm-backend/internal/services"
)

// ---------- flexible service stubs ----------

type stubCustSvc struct {
	create func(context.Context, *domain.Customer) (*domain.Customer, error)
	list   func(context.Context) ([]domain.Customer, error)
	get    func(context.Context, int64) (*domain.Customer, error)
	update func(context.Context, int64, *domain.Customer) (*domain.Customer, error)
	del    func(context.Context, int64) error
}

func (s stubCustSvc) Create(ctx context.Context, in *domain.Customer) (*domain.Customer, error) {
	if s.create != nil {
		return s.create(ctx, in)
	}
	in.ID = 1
	return in, nil
}
func (s stubCustSvc) List(ctx context.Context) ([]domain.Customer, error) {
	if s.list != nil {
		return s.list(ctx)
	}
	return nil, nil
}
func (s stubCustSvc) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return &domain.Customer{ID: id}, nil
}
func (s stubCustSvc) Update(ctx context.Context, id int64, in *domain.Customer) (*domain.Customer, error) {
	if s.update != nil {
		return s.update(ctx, id, in)
	}
	in.ID = id
	return in, nil
}
func (s stubCustSvc) Delete(ctx context.Context, id int64) error {
	if s.del != nil {
		return s.del(ctx, id)
	}
	return nil
}

type stubContactSvc struct {
	create     func(context.Context, string, int64, *domain.Contact, string, string) (*domain.Contact, bool, error)
	listFor    func(context.Context, int64) ([]domain.Contact, error)
	listQuoted func(context.Context) ([]domain.Contact, error)
	update     func(context.Context, int64, *domain.Contact) (*domain.Contact, error)
	del        func(context.Context, int64) error
}

func (s stubContactSvc) Create(ctx context.Context, uid string, cid int64, in *domain.Contact, su, key string) (*domain.Contact, bool, error) {
	if s.create != nil {
		return s.create(ctx, uid, cid, in, su, key)
	}
	in.ID = 1
	in.CustomerID = cid
	return in, false, nil
}
func (s stubContactSvc) ListForCustomer(ctx context.Context, cid int64) ([]domain.Contact, error) {
	if s.listFor != nil {
		return s.listFor(ctx, cid)
	}
	return nil, nil
}
func (s stubContactSvc) ListQuoted(ctx context.Context) ([]domain.Contact, error) {
	if s.listQuoted != nil {
		return s.listQuoted(ctx)
	}
	return nil, nil
}
func (s stubContactSvc) Update(ctx context.Context, id int64, in *domain.Contact) (*domain.Contact, error) {
	if s.update != nil {
		return s.update(ctx, id, in)
	}
	in.ID = id
	return in, nil
}
func (s stubContactSvc) Delete(ctx context.Context, id int64) error {
	if s.del != nil {
		return s.del(ctx, id)
	}
	return nil
}

type stubTaskSvc struct {
	create    func(context.Context, *domain.Task) (*domain.Task, error)
	list      func(context.Context) ([]domain.Task, error)
	get       func(context.Context, int64) (*domain.Task, error)
	update    func(context.Context, int64, *domain.Task) (*domain.Task, error)
	del       func(context.Context, int64) error
	dashboard func(context.Context) (*services.TaskDashboard, error)
}

func (s stubTaskSvc) Create(ctx context.Context, in *domain.Task) (*domain.Task, error) {
	if s.create != nil {
		return s.create(ctx, in)
	}
	in.ID = 1
	return in, nil
}
func (s stubTaskSvc) List(ctx context.Context) ([]domain.Task, error) {
	if s.list != nil {
		return s.list(ctx)
	}
	return nil, nil
}
func (s stubTaskSvc) Get(ctx context.Context, id int64) (*domain.Task, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return &domain.Task{ID: id}, nil
}
func (s stubTaskSvc) Update(ctx context.Context, id int64, in *domain.Task) (*domain.Task, error) {
	if s.update != nil {
		return s.update(ctx, id, in)
	}
	in.ID = id
	return in, nil
}
func (s stubTaskSvc) Delete(ctx context.Context, id int64) error {
	if s.del != nil {
		return s.del(ctx, id)
	}
	return nil
}
func (s stubTaskSvc) Dashboard(ctx context.Context) (*services.TaskDashboard, error) {
	if s.dashboard != nil {
		return s.dashboard(ctx)
	}
	return &services.TaskDashboard{}, nil
}

// newRouter mounts the handlers on a bare test engine.
func newRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/customers", h.CreateCustomer)
	r.GET("/customers", h.ListCustomers)
	r.GET("/customers/contacts/all", h.ListAllContacts)
	r.GET("/customers/:id", h.GetCustomer)
	r.PUT("/customers/:id", h.UpdateCustomer)
	r.DELETE("/customers/:id", h.DeleteCustomer)
	r.GET("/customers/:id/contacts", h.ListContacts)
	r.POST("/customers/:id/contacts", h.CreateContact)
	r.PUT("/contacts/:id", h.UpdateContact)
	r.DELETE("/contacts/:id", h.DeleteContact)
	r.POST("/tasks", h.CreateTask)
	r.GET("/tasks", h.ListTasks)
	r.GET("/tasks/:id", h.GetTask)
	r.PUT("/tasks/:id", h.UpdateTask)
	r.DELETE("/tasks/:id", h.DeleteTask)
	r.GET("/dashboard/tasks", h.TaskDashboard)
	r.GET("/stats", h.Stats)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doJSONWithHeader(t *testing.T, r *gin.Engine, method, path, header, value string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(header, value)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ---------- customer endpoint tests ----------

func TestCreateCustomer_Success(t *testing.T) {
	h := New(stubCustSvc{}, stubContactSvc{}, stubTaskSvc{})
	r := newRouter(h)

	w := doJSON(t, r, http.MethodPost, "/customers", domain.Customer{CompanyName: "Acme Co"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got domain.Customer
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil || got.ID != 1 {
		t.Fatalf("unexpected body: %s (%v)", w.Body.String(), err)
	}
}

func TestCreateCustomer_BadJSON(t *testing.T) {
	h := New(stubCustSvc{}, stubContactSvc{}, stubTaskSvc{})
	r := newRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewBufferString("{nope"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestCreateCustomer_ValidationMapsTo400(t *testing.T) {
	h := New(stubCustSvc{
		create: func(ctx context.Context, in *domain.Customer) (*domain.Customer, error) {
			return nil, &services.ValidationError{Messages: []string{"company_name is required"}}
		},
	}, stubContactSvc{}, stubTaskSvc{})
	r := newRouter(h)

	w := doJSON(t, r, http.MethodPost, "/customers", domain.Customer{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Code != ErrCodeValidation {
		t.Fatalf("unexpected envelope: %s", w.Body.String())
	}
}

func TestGetCustomer_NotFoundAndBadID(t *testing.T) {
	h := New(stubCustSvc{
		get: func(ctx context.Context, id int64) (*domain.Customer, error) {
			return nil, services.ErrCustomerNotFound
		},
	}, stubContactSvc{}, stubTaskSvc{})
	r := newRouter(h)

	if w := doJSON(t, r, http.MethodGet, "/customers/42", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing: status=%d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/customers/abc", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status=%d", w.Code)
	}
}

func TestUpdateCustomer_Success(t *testing.T) {
	h := New(stubCustSvc{}, stubContactSvc{}, stubTaskSvc{})
	r := newRouter(h)

	w := doJSON(t, r, http.MethodPut, "/customers/7", domain.Customer{CompanyName: "After"})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got domain.Customer
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil || got.ID != 7 || got.CompanyName != "After" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestDeleteCustomer_NoContent(t *testing.T) {
	h := New(stubCustSvc{}, stubContactSvc{}, stubTaskSvc{})
	r := newRouter(h)

	w := doJSON(t, r, http.MethodDelete, "/customers/7", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestListCustomers_ServiceError(t *testing.T) {
	h := New(stubCustSvc{
		list: func(ctx context.Context) ([]domain.Customer, error) {
			return nil, context.DeadlineExceeded
		},
	}, stubContactSvc{}, stubTaskSvc{})
	r := newRouter(h)

	w := doJSON(t, r, http.MethodGet, "/customers", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestListAllContacts_ReturnsQuoted(t *testing.T) {
	quoted := "Quoted"
	h := New(stubCustSvc{}, stubContactSvc{
		listQuoted: func(ctx context.Context) ([]domain.Contact, error) {
			return []domain.Contact{{ID: 1, CustomerID: 2, QuotationStatus: &quoted}}, nil
		},
	}, stubTaskSvc{})
	r := newRouter(h)

	w := doJSON(t, r, http.MethodGet, "/customers/contacts/all", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var got []domain.Contact
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil || len(got) != 1 || got[0].CustomerID != 2 {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestStats_ProviderWiring(t *testing.T) {
	h := New(stubCustSvc{}, stubContactSvc{}, stubTaskSvc{}).WithStats(
		func(ctx context.Context) (*repo.Overview, error) {
			return &repo.Overview{TotalCustomers: 5, CustomersByStatus: map[string]int64{"Lead": 5}}, nil
		},
	)
	r := newRouter(h)

	w := doJSON(t, r, http.MethodGet, "/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var got repo.Overview
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil || got.TotalCustomers != 5 {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestStats_Unconfigured(t *testing.T) {
	h := New(stubCustSvc{}, stubContactSvc{}, stubTaskSvc{})
	r := newRouter(h)

	w := doJSON(t, r, http.MethodGet, "/stats", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
}
