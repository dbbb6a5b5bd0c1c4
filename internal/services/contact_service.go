// Package services – ContactService
//
// This file implements ContactService, the application-level component that
// owns the lifecycle of contact logs. It validates inputs, checks that the
// parent customer exists, and persists the contact atomically together with
// its side effects: mirroring a positive quotation amount into the customer's
// contract value, and applying an optional pipeline-status change that rides
// the same transaction.
//
// Contact creation supports safe retries. When an idempotency key is supplied
// a replayed request returns the originally created contact instead of
// inserting a duplicate.
//
// Observability: public methods are OpenTelemetry-instrumented; spans include
// customer/contact identifiers.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-crm-backend/internal/domain"
	"github.com/tbourn/go-crm-backend/internal/repo"
)

// quotationStatuses is the set of values a contact may store. The derived
// "Not Yet Quoted" sentinel is intentionally absent.
var quotationStatuses = map[string]struct{}{
	domain.QuotationNone:        {},
	domain.QuotationQuoted:      {},
	domain.QuotationAwaiting:    {},
	domain.QuotationApproved:    {},
	domain.QuotationRejected:    {},
	domain.QuotationNegotiating: {},
}

// ContactService coordinates contact-log persistence and its customer-side
// effects.
type ContactService struct {
	DB *gorm.DB

	// IdempotencyTTL bounds how long a stored contact-creation result can be
	// replayed. Values <= 0 default to one hour.
	IdempotencyTTL time.Duration
}

// NewContactService constructs a ContactService with the default replay TTL.
func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{DB: db, IdempotencyTTL: time.Hour}
}

// Create validates and persists a contact log for the given customer. When
// in carries a positive quotation amount the customer's contract value is
// updated in the same transaction, and statusUpdate (when non-empty) moves
// the customer's pipeline status atomically with the contact insert.
//
// idemKey, when non-empty, deduplicates retries: a repeated key for the same
// (user, customer) returns the first contact again with replayed=true.
func (s *ContactService) Create(ctx context.Context, userID string, customerID int64, in *domain.Contact, statusUpdate, idemKey string) (contact *domain.Contact, replayed bool, err error) {
	tr := otel.Tracer("services/ContactService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.Int64("customer.id", customerID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	if idemKey != "" {
		if prior, ok := s.replay(ctx, userID, customerID, idemKey); ok {
			return prior, true, nil
		}
	}

	normalizeContact(in)
	if err := validateContact(in); err != nil {
		return nil, false, err
	}

	// Ensure the customer exists before opening the transaction.
	if _, err := repo.GetCustomer(ctx, s.DB, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrCustomerNotFound
		}
		return nil, false, err
	}

	in.CustomerID = customerID
	if in.ContactDate.IsZero() {
		in.ContactDate = time.Now().UTC()
	}

	duplicateKey := false
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := repo.CreateContact(ctx, tx, in)
		if err != nil {
			return err
		}
		contact = created

		if in.HasQuotation() && in.QuotationAmount != nil && *in.QuotationAmount > 0 {
			if err := repo.UpdateCustomerContractValue(ctx, tx, customerID, *in.QuotationAmount); err != nil {
				return err
			}
		}
		if statusUpdate != "" {
			if err := repo.UpdateCustomerStatus(ctx, tx, customerID, statusUpdate); err != nil {
				return err
			}
		}
		if idemKey != "" {
			_, err := repo.CreateIdempotency(ctx, tx, userID, customerID, idemKey, created.ID, 201, s.ttl())
			if errors.Is(err, repo.ErrDuplicate) {
				// A concurrent retry won the insert; roll back and replay theirs.
				duplicateKey = true
				return err
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if duplicateKey {
		if prior, ok := s.replay(ctx, userID, customerID, idemKey); ok {
			return prior, true, nil
		}
	}
	if err != nil {
		return nil, false, err
	}
	return contact, false, nil
}

// ListForCustomer returns one customer's contact history, newest first, or
// ErrCustomerNotFound when the customer does not exist.
func (s *ContactService) ListForCustomer(ctx context.Context, customerID int64) ([]domain.Contact, error) {
	tr := otel.Tracer("services/ContactService")
	ctx, span := tr.Start(ctx, "ListForCustomer",
		trace.WithAttributes(attribute.Int64("customer.id", customerID)),
	)
	defer span.End()

	if _, err := repo.GetCustomer(ctx, s.DB, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return repo.ListCustomerContacts(ctx, s.DB, customerID)
}

// ListQuoted returns every contact carrying quotation info, across all
// customers, newest first. This is the single round trip the data layer
// prefers over one request per customer.
func (s *ContactService) ListQuoted(ctx context.Context) ([]domain.Contact, error) {
	return repo.ListQuotedContacts(ctx, s.DB)
}

// Update validates and replaces a contact's editable fields. A positive
// quotation amount is mirrored into the owning customer's contract value in
// the same transaction.
func (s *ContactService) Update(ctx context.Context, id int64, in *domain.Contact) (*domain.Contact, error) {
	tr := otel.Tracer("services/ContactService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(attribute.Int64("contact.id", id)),
	)
	defer span.End()

	normalizeContact(in)
	if err := validateContact(in); err != nil {
		return nil, err
	}

	existing, err := repo.GetContact(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	if in.ContactDate.IsZero() {
		in.ContactDate = existing.ContactDate
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.UpdateContact(ctx, tx, id, in); err != nil {
			return err
		}
		if in.HasQuotation() && in.QuotationAmount != nil && *in.QuotationAmount > 0 {
			return repo.UpdateCustomerContractValue(ctx, tx, existing.CustomerID, *in.QuotationAmount)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, err
	}
	return repo.GetContact(ctx, s.DB, id)
}

// Delete removes a contact log or returns ErrContactNotFound.
func (s *ContactService) Delete(ctx context.Context, id int64) error {
	tr := otel.Tracer("services/ContactService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.Int64("contact.id", id)),
	)
	defer span.End()

	if err := repo.DeleteContact(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContactNotFound
		}
		return err
	}
	return nil
}

// replay fetches the contact stored for a previously completed create.
func (s *ContactService) replay(ctx context.Context, userID string, customerID int64, key string) (*domain.Contact, bool) {
	rec, err := repo.GetIdempotency(ctx, s.DB, userID, customerID, key, time.Now().UTC())
	if err != nil || rec == nil {
		return nil, false
	}
	prior, err := repo.GetContact(ctx, s.DB, rec.ContactID)
	if err != nil {
		return nil, false
	}
	return prior, true
}

func (s *ContactService) ttl() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return time.Hour
}

// normalizeContact trims the free-text identity fields.
func normalizeContact(c *domain.Contact) {
	c.ContactType = strings.TrimSpace(c.ContactType)
	c.ContactStatus = strings.TrimSpace(c.ContactStatus)
	c.ContactMethod = strings.TrimSpace(c.ContactMethod)
	c.ContactPerson = strings.TrimSpace(c.ContactPerson)
	if c.CreatedBy == "" {
		c.CreatedBy = "Admin"
	}
	if c.QuotationStatus != nil {
		v := strings.TrimSpace(*c.QuotationStatus)
		if v == "" {
			c.QuotationStatus = nil
		} else {
			c.QuotationStatus = &v
		}
	}
}

// validateContact collects every failed check into one ValidationError.
func validateContact(c *domain.Contact) error {
	var msgs []string
	if c.ContactType == "" {
		msgs = append(msgs, "contact_type is required")
	}
	if c.ContactStatus == "" {
		msgs = append(msgs, "contact_status is required")
	}
	if c.QuotationStatus != nil {
		if _, ok := quotationStatuses[*c.QuotationStatus]; !ok {
			msgs = append(msgs, "quotation_status is not a recognized value")
		}
	}
	if c.QuotationAmount != nil && *c.QuotationAmount < 0 {
		msgs = append(msgs, "quotation_amount must not be negative")
	}
	return newValidationError(msgs)
}
