package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-crm-backend/internal/domain"
)

func mustCreateTask(t *testing.T, ctx context.Context, db *gorm.DB, task *domain.Task) *domain.Task {
	t.Helper()
	out, err := CreateTask(ctx, db, task)
	if err != nil {
		t.Fatalf("seed task %q: %v", task.Title, err)
	}
	return out
}

func tptr(ts time.Time) *time.Time { return &ts }

func TestCreateAndGetTask(t *testing.T) {
	db := newTestDB(t, &domain.Customer{}, &domain.Task{})
	ctx := context.Background()

	created, err := CreateTask(ctx, db, &domain.Task{
		Title:    "Call back Acme",
		Priority: domain.PriorityHigh,
		Status:   domain.TaskPending,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected generated ID")
	}

	got, err := GetTask(ctx, db, created.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Title != "Call back Acme" || got.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected row: %+v", got)
	}

	if _, err := GetTask(ctx, db, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing task should be ErrNotFound, got %v", err)
	}
}

func TestListTasks_UndatedLast(t *testing.T) {
	db := newTestDB(t, &domain.Customer{}, &domain.Task{})
	ctx := context.Background()

	soon := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	mustCreateTask(t, ctx, db, &domain.Task{Title: "undated", Priority: domain.PriorityLow, Status: domain.TaskPending})
	mustCreateTask(t, ctx, db, &domain.Task{Title: "later", Priority: domain.PriorityLow, Status: domain.TaskPending, DueDate: tptr(later)})
	mustCreateTask(t, ctx, db, &domain.Task{Title: "soon", Priority: domain.PriorityLow, Status: domain.TaskPending, DueDate: tptr(soon)})

	got, err := ListTasks(ctx, db)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(got) != 3 || got[0].Title != "soon" || got[1].Title != "later" || got[2].Title != "undated" {
		titles := make([]string, 0, len(got))
		for _, x := range got {
			titles = append(titles, x.Title)
		}
		t.Fatalf("unexpected order: %v", titles)
	}
}

func TestListCustomerTasks_Scoped(t *testing.T) {
	db := newTestDB(t, &domain.Customer{}, &domain.Task{})
	ctx := context.Background()

	a := seedCustomer(t, db, &domain.Customer{CompanyName: "A"})
	b := seedCustomer(t, db, &domain.Customer{CompanyName: "B"})

	mustCreateTask(t, ctx, db, &domain.Task{Title: "for A", Priority: domain.PriorityLow, Status: domain.TaskPending, CustomerID: &a.ID})
	mustCreateTask(t, ctx, db, &domain.Task{Title: "for B", Priority: domain.PriorityLow, Status: domain.TaskPending, CustomerID: &b.ID})
	mustCreateTask(t, ctx, db, &domain.Task{Title: "unattached", Priority: domain.PriorityLow, Status: domain.TaskPending})

	got, err := ListCustomerTasks(ctx, db, a.ID)
	if err != nil {
		t.Fatalf("ListCustomerTasks: %v", err)
	}
	if len(got) != 1 || got[0].Title != "for A" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestDashboardQueries(t *testing.T) {
	db := newTestDB(t, &domain.Customer{}, &domain.Task{})
	ctx := context.Background()
	day := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	mustCreateTask(t, ctx, db, &domain.Task{Title: "due today", Priority: domain.PriorityMedium, Status: domain.TaskPending, DueDate: tptr(day.Add(3 * time.Hour))})
	mustCreateTask(t, ctx, db, &domain.Task{Title: "due today done", Priority: domain.PriorityMedium, Status: domain.TaskCompleted, DueDate: tptr(day.Add(2 * time.Hour))})
	mustCreateTask(t, ctx, db, &domain.Task{Title: "overdue", Priority: domain.PriorityHigh, Status: domain.TaskInProgress, DueDate: tptr(day.Add(-48 * time.Hour))})
	mustCreateTask(t, ctx, db, &domain.Task{Title: "urgent no date", Priority: domain.PriorityUrgent, Status: domain.TaskPending})
	mustCreateTask(t, ctx, db, &domain.Task{Title: "urgent done", Priority: domain.PriorityUrgent, Status: domain.TaskCompleted})
	mustCreateTask(t, ctx, db, &domain.Task{Title: "future", Priority: domain.PriorityLow, Status: domain.TaskPending, DueDate: tptr(day.Add(72 * time.Hour))})

	due, err := ListTasksDueOn(ctx, db, day)
	if err != nil {
		t.Fatalf("ListTasksDueOn: %v", err)
	}
	if len(due) != 1 || due[0].Title != "due today" {
		t.Fatalf("due today = %+v", due)
	}

	over, err := ListOverdueTasks(ctx, db, day)
	if err != nil {
		t.Fatalf("ListOverdueTasks: %v", err)
	}
	if len(over) != 1 || over[0].Title != "overdue" {
		t.Fatalf("overdue = %+v", over)
	}

	urgent, err := ListUrgentTasks(ctx, db)
	if err != nil {
		t.Fatalf("ListUrgentTasks: %v", err)
	}
	if len(urgent) != 1 || urgent[0].Title != "urgent no date" {
		t.Fatalf("urgent = %+v", urgent)
	}

	open, err := CountOpenTasks(ctx, db)
	if err != nil || open != 4 {
		t.Fatalf("CountOpenTasks = (%d, %v); want (4, nil)", open, err)
	}
}

func TestUpdateTask_FieldsAndNotFound(t *testing.T) {
	db := newTestDB(t, &domain.Customer{}, &domain.Task{})
	ctx := context.Background()

	task := mustCreateTask(t, ctx, db, &domain.Task{Title: "before", Priority: domain.PriorityLow, Status: domain.TaskPending})

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	err := UpdateTask(ctx, db, task.ID, &domain.Task{
		Title:    "after",
		Priority: domain.PriorityUrgent,
		Status:   domain.TaskInProgress,
		DueDate:  &due,
	})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	got, err := GetTask(ctx, db, task.ID)
	if err != nil {
		t.Fatalf("readback: %v", err)
	}
	if got.Title != "after" || got.Priority != domain.PriorityUrgent || got.Status != domain.TaskInProgress || got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := UpdateTask(ctx, db, 9999, &domain.Task{Title: "x", Priority: domain.PriorityLow, Status: domain.TaskPending}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTask(t *testing.T) {
	db := newTestDB(t, &domain.Customer{}, &domain.Task{})
	ctx := context.Background()

	task := mustCreateTask(t, ctx, db, &domain.Task{Title: "t", Priority: domain.PriorityLow, Status: domain.TaskPending})
	if err := DeleteTask(ctx, db, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, err := GetTask(ctx, db, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted task should be invisible, got %v", err)
	}
	if err := DeleteTask(ctx, db, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete should be ErrNotFound, got %v", err)
	}
}
