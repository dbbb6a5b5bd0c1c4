// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Contact
// model (the contact_logs table).
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

// CreateContact inserts a new contact log row. The ID is generated by the
// database sequence; the caller must never supply one.
func CreateContact(ctx context.Context, db *gorm.DB, c *domain.Contact) (*domain.Contact, error) {
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// ListCustomerContacts returns one customer's contact history, newest
// contact first.
func ListCustomerContacts(ctx context.Context, db *gorm.DB, customerID int64) ([]domain.Contact, error) {
	var out []domain.Contact
	err := db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("contact_date desc, id desc").
		Find(&out).Error
	return out, err
}

// ListQuotedContacts returns every contact that carries quotation info,
// newest first. This backs the combined listing the data layer loads in
// one round trip instead of one request per customer.
func ListQuotedContacts(ctx context.Context, db *gorm.DB) ([]domain.Contact, error) {
	var out []domain.Contact
	err := db.WithContext(ctx).
		Where("quotation_status IS NOT NULL").
		Order("contact_date desc, id desc").
		Find(&out).Error
	return out, err
}

// GetContact fetches a single contact by ID, or ErrNotFound if missing.
func GetContact(ctx context.Context, db *gorm.DB, id int64) (*domain.Contact, error) {
	var c domain.Contact
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateContact replaces the editable fields of a contact. Returns
// ErrNotFound when the contact does not exist.
func UpdateContact(ctx context.Context, db *gorm.DB, id int64, c *domain.Contact) error {
	res := db.WithContext(ctx).
		Model(&domain.Contact{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"contact_type":     c.ContactType,
			"contact_status":   c.ContactStatus,
			"contact_method":   c.ContactMethod,
			"contact_person":   c.ContactPerson,
			"contact_details":  c.ContactDetails,
			"next_follow_up":   c.NextFollowUp,
			"notes":            c.Notes,
			"contact_date":     c.ContactDate,
			"quotation_status": c.QuotationStatus,
			"quotation_amount": c.QuotationAmount,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteContact removes a contact log row. Returns ErrNotFound when the
// contact does not exist.
func DeleteContact(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Contact{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
