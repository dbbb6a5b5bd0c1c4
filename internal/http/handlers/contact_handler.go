// Contact HTTP handlers.
//
// This file exposes REST endpoints for contact-log resources:
//   - GET    /customers/{id}/contacts  (history, newest first)
//   - POST   /customers/{id}/contacts  (create, idempotent via Idempotency-Key)
//   - PUT    /contacts/{id}            (update)
//   - DELETE /contacts/{id}            (delete)
//
// Contact creation may ride a pipeline-status change for the customer in the
// same transaction via the customer_status_update field.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crm-backend/internal/domain"
	"github.com/tbourn/go-crm-backend/internal/http/middleware"
)

// CreateContactRequest is the JSON payload for creating a contact log.
// CustomerStatusUpdate, when non-empty, moves the customer's pipeline status
// in the same transaction as the contact insert.
type CreateContactRequest struct {
	domain.Contact
	CustomerStatusUpdate string `json:"customer_status_update,omitempty" example:"Negotiating"`
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, found := c.Get("userID"); found {
		if s, isStr := v.(string); isStr && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

// ListContacts godoc
// @ID          listContacts
// @Summary     List one customer's contact history
// @Tags        Contacts
// @Produce     json
//
// @Param       id  path  int  true  "Customer ID"  example(42)
//
// @Success     200  {array}  domain.Contact
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Customer not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /customers/{id}/contacts [get]
func (h *Handlers) ListContacts(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	items, err := h.contactSvc.ListForCustomer(c.Request.Context(), id)
	if err != nil {
		svcFail(c, err)
		return
	}
	ok(c, http.StatusOK, items)
}

// CreateContact godoc
// @ID          createContact
// @Summary     Record a contact with a customer
// @Description Persists the contact atomically with its side effects. A positive quotation amount updates the customer's contract value; customer_status_update moves the pipeline status. Retries with the same Idempotency-Key replay the first result.
// @Tags        Contacts
// @Accept      json
// @Produce     json
//
// @Param       id               path    int                            true   "Customer ID"  example(42)
// @Param       Idempotency-Key  header  string                         false  "Deduplicates retried submissions"
// @Param       X-User-ID        header  string                         false  "User ID (demo header)"  example(user123)
// @Param       body             body    handlers.CreateContactRequest  true   "Contact payload"
//
// @Success     201  {object} domain.Contact
// @Success     200  {object} domain.Contact "Replayed from a previous submission"
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     404  {object} handlers.ErrorResponse "Customer not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /customers/{id}/contacts [post]
func (h *Handlers) CreateContact(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	req.Contact.ID = 0

	idemKey, _ := middleware.GetIdempotencyKey(c)
	contact, replayed, err := h.contactSvc.Create(
		c.Request.Context(), userID(c), id, &req.Contact, req.CustomerStatusUpdate, idemKey,
	)
	if err != nil {
		svcFail(c, err)
		return
	}
	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	ok(c, status, contact)
}

// UpdateContact godoc
// @ID          updateContact
// @Summary     Update a contact log
// @Tags        Contacts
// @Accept      json
// @Produce     json
//
// @Param       id    path  int             true  "Contact ID"  example(7)
// @Param       body  body  domain.Contact  true  "Updated fields"
//
// @Success     200  {object} domain.Contact
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     404  {object} handlers.ErrorResponse "Contact not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /contacts/{id} [put]
func (h *Handlers) UpdateContact(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	var req domain.Contact
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	updated, err := h.contactSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		svcFail(c, err)
		return
	}
	ok(c, http.StatusOK, updated)
}

// DeleteContact godoc
// @ID          deleteContact
// @Summary     Delete a contact log
// @Tags        Contacts
// @Produce     json
//
// @Param       id  path  int  true  "Contact ID"  example(7)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Contact not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /contacts/{id} [delete]
func (h *Handlers) DeleteContact(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	if err := h.contactSvc.Delete(c.Request.Context(), id); err != nil {
		svcFail(c, err)
		return
	}
	noContent(c)
}
