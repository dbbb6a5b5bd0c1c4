// Package services – CustomerService
//
// This file implements the CustomerService, which manages the lifecycle of
// customer accounts. It validates and normalizes incoming fields, applies
// defaults for the lead source and required products, and coordinates
// repository operations for creating, listing, updating, and deleting
// customers.
//
// Service-level errors (e.g., ErrCustomerNotFound) are returned for
// predictable cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

// CustomerRepo defines the repository contract required by CustomerService.
// Implementations are responsible for persistence of customer aggregates.
type CustomerRepo interface {
	// CreateCustomer inserts a new customer row.
	CreateCustomer(ctx context.Context, db *gorm.DB, c *domain.Customer) (*domain.Customer, error)

	// ListCustomers returns all customers, newest first.
	ListCustomers(ctx context.Context, db *gorm.DB) ([]domain.Customer, error)

	// GetCustomer fetches a customer by ID.
	GetCustomer(ctx context.Context, db *gorm.DB, id int64) (*domain.Customer, error)

	// UpdateCustomer replaces the editable fields of a customer.
	UpdateCustomer(ctx context.Context, db *gorm.DB, id int64, c *domain.Customer) error

	// DeleteCustomer soft-deletes a customer (contacts cascade).
	DeleteCustomer(ctx context.Context, db *gorm.DB, id int64) error
}

// CustomerService provides customer-level operations. It enforces input
// rules and applies creation defaults.
type CustomerService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the customer repository used by this service.
	Repo CustomerRepo
}

// NewCustomerService constructs a CustomerService.
func NewCustomerService(db *gorm.DB, r CustomerRepo) *CustomerService {
	return &CustomerService{DB: db, Repo: r}
}

// Create validates the input, applies defaults, and inserts the customer.
func (s *CustomerService) Create(ctx context.Context, in *domain.Customer) (*domain.Customer, error) {
	tr := otel.Tracer("services/CustomerService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("customer.company", in.CompanyName)),
	)
	defer span.End()

	normalizeCustomer(in)
	if err := validateCustomer(in); err != nil {
		return nil, err
	}
	if in.LeadSource == "" {
		in.LeadSource = domain.DefaultLeadSource
	}
	if in.RequiredProducts == "" {
		in.RequiredProducts = domain.DefaultRequiredProducts
	}
	return s.Repo.CreateCustomer(ctx, s.DB, in)
}

// List returns all customers, newest first.
func (s *CustomerService) List(ctx context.Context) ([]domain.Customer, error) {
	return s.Repo.ListCustomers(ctx, s.DB)
}

// Get fetches a single customer or ErrCustomerNotFound.
func (s *CustomerService) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	c, err := s.Repo.GetCustomer(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return c, nil
}

// Update validates the input and replaces the customer's editable fields.
func (s *CustomerService) Update(ctx context.Context, id int64, in *domain.Customer) (*domain.Customer, error) {
	tr := otel.Tracer("services/CustomerService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(attribute.Int64("customer.id", id)),
	)
	defer span.End()

	normalizeCustomer(in)
	if err := validateCustomer(in); err != nil {
		return nil, err
	}
	if in.LeadSource == "" {
		in.LeadSource = domain.DefaultLeadSource
	}
	if in.RequiredProducts == "" {
		in.RequiredProducts = domain.DefaultRequiredProducts
	}
	if err := s.Repo.UpdateCustomer(ctx, s.DB, id, in); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete soft-deletes a customer. Contact logs cascade; tasks keep the row
// with the customer reference cleared.
func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	tr := otel.Tracer("services/CustomerService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.Int64("customer.id", id)),
	)
	defer span.End()

	if err := s.Repo.DeleteCustomer(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return err
	}
	return nil
}

// normalizeCustomer trims the fields that are matched or displayed verbatim.
func normalizeCustomer(c *domain.Customer) {
	c.CompanyName = strings.TrimSpace(c.CompanyName)
	c.SalesPerson = strings.TrimSpace(c.SalesPerson)
	c.CustomerStatus = strings.TrimSpace(c.CustomerStatus)
	c.LeadSource = strings.TrimSpace(c.LeadSource)
	c.Email = strings.TrimSpace(c.Email)
	c.PhoneNumber = strings.TrimSpace(c.PhoneNumber)
}

var emailRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// validateCustomer collects every failed check into one ValidationError.
func validateCustomer(c *domain.Customer) error {
	var msgs []string
	if c.CompanyName == "" {
		msgs = append(msgs, "company_name is required")
	}
	if c.SalesPerson == "" {
		msgs = append(msgs, "sales_person is required")
	}
	if c.CustomerStatus == "" {
		msgs = append(msgs, "customer_status is required")
	}
	if c.Email != "" && !emailRE.MatchString(c.Email) {
		msgs = append(msgs, "email is not a valid address")
	}
	if c.PhoneNumber != "" && digitCount(c.PhoneNumber) < 9 {
		msgs = append(msgs, "phone_number must contain at least 9 digits")
	}
	if c.ContractValue != nil && *c.ContractValue < 0 {
		msgs = append(msgs, "contract_value must not be negative")
	}
	return newValidationError(msgs)
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
