// Package services – TaskService
//
// This file implements TaskService, which manages follow-up tasks and the
// dashboard view that groups them into due-today, overdue, and urgent
// buckets. Tasks may optionally reference a customer; the reference is
// validated on create so dangling links never enter the table.
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

var (
	taskPriorities = map[string]struct{}{
		domain.PriorityLow:    {},
		domain.PriorityMedium: {},
		domain.PriorityHigh:   {},
		domain.PriorityUrgent: {},
	}
	taskStatuses = map[string]struct{}{
		domain.TaskPending:    {},
		domain.TaskInProgress: {},
		domain.TaskCompleted:  {},
	}
)

// TaskDashboard groups open tasks for the dashboard endpoint.
type TaskDashboard struct {
	DueToday []domain.Task `json:"due_today"`
	Overdue  []domain.Task `json:"overdue"`
	Urgent   []domain.Task `json:"urgent"`
}

// TaskService provides task CRUD and the dashboard aggregation.
type TaskService struct {
	DB *gorm.DB

	// Now is the clock used by Dashboard; tests override it.
	Now func() time.Time
}

// NewTaskService constructs a TaskService using the wall clock.
func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{DB: db, Now: func() time.Time { return time.Now().UTC() }}
}

// Create validates the input, applies defaults, and inserts the task.
func (s *TaskService) Create(ctx context.Context, in *domain.Task) (*domain.Task, error) {
	tr := otel.Tracer("services/TaskService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("task.title", in.Title)),
	)
	defer span.End()

	normalizeTask(in)
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if in.Status == "" {
		in.Status = domain.TaskPending
	}
	if err := validateTask(in); err != nil {
		return nil, err
	}
	if in.CustomerID != nil {
		if _, err := repo.GetCustomer(ctx, s.DB, *in.CustomerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCustomerNotFound
			}
			return nil, err
		}
	}
	return repo.CreateTask(ctx, s.DB, in)
}

// List returns all tasks ordered by due date, undated tasks last.
func (s *TaskService) List(ctx context.Context) ([]domain.Task, error) {
	return repo.ListTasks(ctx, s.DB)
}

// ListForCustomer returns the tasks tied to one customer.
func (s *TaskService) ListForCustomer(ctx context.Context, customerID int64) ([]domain.Task, error) {
	return repo.ListCustomerTasks(ctx, s.DB, customerID)
}

// Get fetches a single task or ErrTaskNotFound.
func (s *TaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := repo.GetTask(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

// Update validates the input and replaces the task's editable fields.
func (s *TaskService) Update(ctx context.Context, id int64, in *domain.Task) (*domain.Task, error) {
	tr := otel.Tracer("services/TaskService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(attribute.Int64("task.id", id)),
	)
	defer span.End()

	normalizeTask(in)
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if in.Status == "" {
		in.Status = domain.TaskPending
	}
	if err := validateTask(in); err != nil {
		return nil, err
	}
	if err := repo.UpdateTask(ctx, s.DB, id, in); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a task or returns ErrTaskNotFound.
func (s *TaskService) Delete(ctx context.Context, id int64) error {
	if err := repo.DeleteTask(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}

// Dashboard gathers the due-today, overdue, and urgent buckets relative to
// the service clock.
func (s *TaskService) Dashboard(ctx context.Context) (*TaskDashboard, error) {
	tr := otel.Tracer("services/TaskService")
	ctx, span := tr.Start(ctx, "Dashboard")
	defer span.End()

	now := s.Now()
	due, err := repo.ListTasksDueOn(ctx, s.DB, now)
	if err != nil {
		return nil, err
	}
	over, err := repo.ListOverdueTasks(ctx, s.DB, now)
	if err != nil {
		return nil, err
	}
	urgent, err := repo.ListUrgentTasks(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	return &TaskDashboard{DueToday: due, Overdue: over, Urgent: urgent}, nil
}

// normalizeTask trims the fields that are matched or displayed verbatim.
func normalizeTask(t *domain.Task) {
	t.Title = strings.TrimSpace(t.Title)
	t.TaskType = strings.TrimSpace(t.TaskType)
	t.Priority = strings.TrimSpace(t.Priority)
	t.Status = strings.TrimSpace(t.Status)
	t.AssignedTo = strings.TrimSpace(t.AssignedTo)
}

// validateTask collects every failed check into one ValidationError.
func validateTask(t *domain.Task) error {
	var msgs []string
	if t.Title == "" {
		msgs = append(msgs, "title is required")
	}
	if _, ok := taskPriorities[t.Priority]; !ok {
		msgs = append(msgs, "priority must be Low, Medium, High, or Urgent")
	}
	if _, ok := taskStatuses[t.Status]; !ok {
		msgs = append(msgs, "status must be Pending, In Progress, or Completed")
	}
	return newValidationError(msgs)
}
