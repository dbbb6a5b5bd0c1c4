// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Task
// model, including the dashboard queries (due today, overdue, urgent).
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

// CreateTask inserts a new task row.
func CreateTask(ctx context.Context, db *gorm.DB, t *domain.Task) (*domain.Task, error) {
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// ListTasks returns all tasks ordered by due date (soonest first), with
// undated tasks last.
func ListTasks(ctx context.Context, db *gorm.DB) ([]domain.Task, error) {
	var out []domain.Task
	err := db.WithContext(ctx).
		Order("due_date IS NULL, due_date asc, priority desc").
		Find(&out).Error
	return out, err
}

// ListCustomerTasks returns the tasks tied to one customer.
func ListCustomerTasks(ctx context.Context, db *gorm.DB, customerID int64) ([]domain.Task, error) {
	var out []domain.Task
	err := db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("due_date IS NULL, due_date asc").
		Find(&out).Error
	return out, err
}

// ListTasksDueOn returns incomplete tasks due on the given day, most
// urgent first.
func ListTasksDueOn(ctx context.Context, db *gorm.DB, day time.Time) ([]domain.Task, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)
	var out []domain.Task
	err := db.WithContext(ctx).
		Where("due_date >= ? AND due_date < ? AND status <> ?", start, end, domain.TaskCompleted).
		Order("priority desc").
		Find(&out).Error
	return out, err
}

// ListOverdueTasks returns incomplete tasks whose due date is before the
// given day, oldest first.
func ListOverdueTasks(ctx context.Context, db *gorm.DB, day time.Time) ([]domain.Task, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	var out []domain.Task
	err := db.WithContext(ctx).
		Where("due_date < ? AND status <> ?", start, domain.TaskCompleted).
		Order("due_date asc").
		Find(&out).Error
	return out, err
}

// ListUrgentTasks returns incomplete tasks with urgent priority, soonest
// due first.
func ListUrgentTasks(ctx context.Context, db *gorm.DB) ([]domain.Task, error) {
	var out []domain.Task
	err := db.WithContext(ctx).
		Where("priority = ? AND status <> ?", domain.PriorityUrgent, domain.TaskCompleted).
		Order("due_date asc").
		Find(&out).Error
	return out, err
}

// CountOpenTasks returns the number of tasks not yet completed.
func CountOpenTasks(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("status <> ?", domain.TaskCompleted).
		Count(&total).Error
	return total, err
}

// GetTask fetches a single task by ID, or ErrNotFound if missing.
func GetTask(ctx context.Context, db *gorm.DB, id int64) (*domain.Task, error) {
	var t domain.Task
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTask replaces the editable fields of a task. Returns ErrNotFound
// when the task does not exist.
func UpdateTask(ctx context.Context, db *gorm.DB, id int64, t *domain.Task) error {
	res := db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"title":         t.Title,
			"description":   t.Description,
			"task_type":     t.TaskType,
			"priority":      t.Priority,
			"status":        t.Status,
			"assigned_to":   t.AssignedTo,
			"due_date":      t.DueDate,
			"reminder_date": t.ReminderDate,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteTask removes a task. Returns ErrNotFound when the task does not
// exist.
func DeleteTask(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
