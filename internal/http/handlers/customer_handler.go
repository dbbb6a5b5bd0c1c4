// Customer HTTP handlers.
//
// This file exposes REST endpoints for customer resources:
//   - POST   /customers                   (create)
//   - GET    /customers                   (list, ETag support)
//   - GET    /customers/{id}              (fetch)
//   - PUT    /customers/{id}              (update)
//   - DELETE /customers/{id}              (delete)
//   - GET    /customers/contacts/all      (bulk quoted-contact listing)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-crm-backend/internal/domain"
	"github.com/tbourn/go-crm-backend/internal/repo"
	"github.com/tbourn/go-crm-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// CustomerService defines customer lifecycle operations consumed by HTTP
// handlers. Implementations should be safe for concurrent use and must honor
// the provided context for cancellation and timeouts.
type CustomerService interface {
	// Create validates and inserts a new customer.
	Create(ctx context.Context, in *domain.Customer) (*domain.Customer, error)
	// List returns all customers, newest first.
	List(ctx context.Context) ([]domain.Customer, error)
	// Get fetches a customer by ID.
	Get(ctx context.Context, id int64) (*domain.Customer, error)
	// Update replaces a customer's editable fields and returns the result.
	Update(ctx context.Context, id int64, in *domain.Customer) (*domain.Customer, error)
	// Delete soft-deletes a customer.
	Delete(ctx context.Context, id int64) error
}

// ContactService defines contact-log operations consumed by HTTP handlers.
type ContactService interface {
	// Create persists a contact with its side effects; idemKey enables replays.
	Create(ctx context.Context, userID string, customerID int64, in *domain.Contact, statusUpdate, idemKey string) (*domain.Contact, bool, error)
	// ListForCustomer returns one customer's contact history, newest first.
	ListForCustomer(ctx context.Context, customerID int64) ([]domain.Contact, error)
	// ListQuoted returns every contact carrying quotation info.
	ListQuoted(ctx context.Context) ([]domain.Contact, error)
	// Update replaces a contact's editable fields and returns the result.
	Update(ctx context.Context, id int64, in *domain.Contact) (*domain.Contact, error)
	// Delete removes a contact log.
	Delete(ctx context.Context, id int64) error
}

// TaskService defines task operations consumed by HTTP handlers.
type TaskService interface {
	// Create validates and inserts a new task.
	Create(ctx context.Context, in *domain.Task) (*domain.Task, error)
	// List returns all tasks ordered by due date.
	List(ctx context.Context) ([]domain.Task, error)
	// Get fetches a task by ID.
	Get(ctx context.Context, id int64) (*domain.Task, error)
	// Update replaces a task's editable fields and returns the result.
	Update(ctx context.Context, id int64, in *domain.Task) (*domain.Task, error)
	// Delete removes a task.
	Delete(ctx context.Context, id int64) error
	// Dashboard groups open tasks into due-today, overdue, and urgent buckets.
	Dashboard(ctx context.Context) (*services.TaskDashboard, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for customers, contacts, and tasks.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	custSvc    CustomerService
	contactSvc ContactService
	taskSvc    TaskService
	stats      StatsProvider
}

// New constructs and returns a Handlers instance bound to the given services.
func New(custSvc CustomerService, contactSvc ContactService, taskSvc TaskService) *Handlers {
	return &Handlers{custSvc: custSvc, contactSvc: contactSvc, taskSvc: taskSvc}
}

//
// Helpers
//

// pathID parses the :id path parameter as a positive int64. On failure it
// writes a 400 response and returns ok=false.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// svcFail maps service-level errors onto the standard error envelope.
func svcFail(c *gin.Context, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		fail(c, http.StatusBadRequest, ErrCodeValidation, ve.Error())
	case errors.Is(err, services.ErrCustomerNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "customer not found")
	case errors.Is(err, services.ErrContactNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "contact not found")
	case errors.Is(err, services.ErrTaskNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "task not found")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

//
// Handlers
//

// CreateCustomer godoc
// @ID          createCustomer
// @Summary     Create a customer
// @Description Creates a customer account. Missing lead_source and required_products receive defaults.
// @Tags        Customers
// @Accept      json
// @Produce     json
//
// @Param       body  body  domain.Customer  true  "Customer payload"
//
// @Success     201  {object}  domain.Customer
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /customers [post]
func (h *Handlers) CreateCustomer(c *gin.Context) {
	var req domain.Customer
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	req.ID = 0

	created, err := h.custSvc.Create(c.Request.Context(), &req)
	if err != nil {
		svcFail(c, err)
		return
	}
	ok(c, http.StatusCreated, created)
}

// ListCustomers godoc
// @ID          listCustomers
// @Summary     List customers
// @Description Returns all customers, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Customers
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
//
// @Success     200  {array}  domain.Customer
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /customers [get]
func (h *Handlers) ListCustomers(c *gin.Context) {
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, isConcrete := h.custSvc.(*services.CustomerService); isConcrete {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.CustomersStats(ctx, db)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"customers:%d:%d"`, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, err := h.custSvc.List(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// GetCustomer godoc
// @ID          getCustomer
// @Summary     Fetch a customer
// @Tags        Customers
// @Produce     json
//
// @Param       id  path  int  true  "Customer ID"  example(42)
//
// @Success     200  {object} domain.Customer
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Customer not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /customers/{id} [get]
func (h *Handlers) GetCustomer(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	cust, err := h.custSvc.Get(c.Request.Context(), id)
	if err != nil {
		svcFail(c, err)
		return
	}
	ok(c, http.StatusOK, cust)
}

// UpdateCustomer godoc
// @ID          updateCustomer
// @Summary     Update a customer
// @Tags        Customers
// @Accept      json
// @Produce     json
//
// @Param       id    path  int              true  "Customer ID"  example(42)
// @Param       body  body  domain.Customer  true  "Updated fields"
//
// @Success     200  {object} domain.Customer
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     404  {object} handlers.ErrorResponse "Customer not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /customers/{id} [put]
func (h *Handlers) UpdateCustomer(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	var req domain.Customer
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	updated, err := h.custSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		svcFail(c, err)
		return
	}
	ok(c, http.StatusOK, updated)
}

// DeleteCustomer godoc
// @ID          deleteCustomer
// @Summary     Delete a customer
// @Description Soft-deletes a customer. Contact logs cascade; tasks keep their row with the reference cleared.
// @Tags        Customers
// @Produce     json
//
// @Param       id  path  int  true  "Customer ID"  example(42)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Customer not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /customers/{id} [delete]
func (h *Handlers) DeleteCustomer(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	if err := h.custSvc.Delete(c.Request.Context(), id); err != nil {
		svcFail(c, err)
		return
	}
	noContent(c)
}

// ListAllContacts godoc
// @ID          listAllContacts
// @Summary     List all contacts carrying quotation info
// @Description Returns quoted contacts across all customers in one response, newest first. Clients use this instead of one request per customer.
// @Tags        Contacts
// @Produce     json
//
// @Success     200  {array}  domain.Contact
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /customers/contacts/all [get]
func (h *Handlers) ListAllContacts(c *gin.Context) {
	items, err := h.contactSvc.ListQuoted(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}
