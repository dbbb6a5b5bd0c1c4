// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// for conditional responses (ETag generation) and the stats endpoint. Each
// function is context-aware and safe to call from services or handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

// CustomersStats returns aggregate metadata for the customer table: the
// total number of rows and the maximum UpdatedAt timestamp among them.
//
// It executes two lightweight queries. When there are no customers, the
// returned count is 0 and maxUpdatedAt is nil. The HTTP layer folds both
// into a weak ETag so unchanged listings short-circuit with 304.
func CustomersStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Customer{})

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// Overview is the aggregate snapshot served by the stats endpoint.
type Overview struct {
	TotalCustomers     int64            `json:"total_customers"`
	CustomersByStatus  map[string]int64 `json:"customers_by_status"`
	TotalContractValue float64          `json:"total_contract_value"`
	RecentContacts     int64            `json:"recent_contacts"`
	OpenTasks          int64            `json:"open_tasks"`
}

// StatsOverview gathers the dashboard aggregates in a handful of small
// queries. RecentContacts counts contacts made in the seven days before
// now.
func StatsOverview(ctx context.Context, db *gorm.DB, now time.Time) (*Overview, error) {
	out := &Overview{CustomersByStatus: map[string]int64{}}

	if err := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Count(&out.TotalCustomers).Error; err != nil {
		return nil, err
	}

	var byStatus []struct {
		CustomerStatus string
		N              int64
	}
	if err := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Select("customer_status, count(*) as n").
		Group("customer_status").
		Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		out.CustomersByStatus[row.CustomerStatus] = row.N
	}

	var total struct {
		V float64
	}
	if err := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Select("coalesce(sum(contract_value), 0) as v").
		Scan(&total).Error; err != nil {
		return nil, err
	}
	out.TotalContractValue = total.V

	since := now.Add(-7 * 24 * time.Hour)
	if err := db.WithContext(ctx).
		Model(&domain.Contact{}).
		Where("contact_date >= ?", since).
		Count(&out.RecentContacts).Error; err != nil {
		return nil, err
	}

	open, err := CountOpenTasks(ctx, db)
	if err != nil {
		return nil, err
	}
	out.OpenTasks = open

	return out, nil
}
