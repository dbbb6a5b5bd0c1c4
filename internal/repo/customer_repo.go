// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Customer
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a customer is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// This repository is designed to be wrapped by a higher-level service
// (see services.CustomerService) which enforces validation, defaulting,
// and cross-aggregate behavior.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateCustomer inserts a new Customer row. The caller (service layer) is
// responsible for validation and defaulting; this function persists what it
// is given. On success the stored row, with its generated ID, is returned.
func CreateCustomer(ctx context.Context, db *gorm.DB, c *domain.Customer) (*domain.Customer, error) {
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// ListCustomers returns all customers, newest first. It returns an empty
// slice when the table is empty. On DB error, it returns the error.
func ListCustomers(ctx context.Context, db *gorm.DB) ([]domain.Customer, error) {
	var out []domain.Customer
	err := db.WithContext(ctx).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// CountCustomers returns the total number of customers.
func CountCustomers(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Count(&total).Error
	return total, err
}

// GetCustomer fetches a single customer by ID, or ErrNotFound if missing.
func GetCustomer(ctx context.Context, db *gorm.DB, id int64) (*domain.Customer, error) {
	var c domain.Customer
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCustomer replaces the editable fields of the customer identified by
// id. If no rows are affected the customer does not exist and ErrNotFound
// is returned.
func UpdateCustomer(ctx context.Context, db *gorm.DB, id int64, c *domain.Customer) error {
	res := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"company_name":        c.CompanyName,
			"location":            c.Location,
			"business_type":       c.BusinessType,
			"contact_names":       c.ContactNames,
			"phone_number":        c.PhoneNumber,
			"email":               c.Email,
			"budget":              c.Budget,
			"required_products":   c.RequiredProducts,
			"pain_points":         c.PainPoints,
			"contract_value":      c.ContractValue,
			"lead_source":         c.LeadSource,
			"sales_person":        c.SalesPerson,
			"customer_status":     c.CustomerStatus,
			"search_keyword":      c.SearchKeyword,
			"no_quotation_reason": c.NoQuotationReason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateCustomerStatus moves the customer to a new pipeline status.
// Returns ErrNotFound when the customer does not exist.
func UpdateCustomerStatus(ctx context.Context, db *gorm.DB, id int64, status string) error {
	res := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("id = ?", id).
		Update("customer_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateCustomerContractValue mirrors a freshly quoted amount into the
// customer row. Called inside the contact-creation transaction so the
// contact insert and this update land or fail together.
func UpdateCustomerContractValue(ctx context.Context, db *gorm.DB, id int64, value float64) error {
	res := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"contract_value": value,
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCustomer soft-deletes a customer. Contacts cascade at the DB level
// on hard delete; soft-deleted customers keep their history for audit.
// Returns ErrNotFound when the customer does not exist.
func DeleteCustomer(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Customer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
