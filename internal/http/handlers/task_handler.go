// Task HTTP handlers.
//
// This file exposes REST endpoints for task resources:
//   - POST   /tasks             (create)
//   - GET    /tasks             (list)
//   - GET    /tasks/{id}        (fetch)
//   - PUT    /tasks/{id}        (update)
//   - DELETE /tasks/{id}        (delete)
//   - GET    /dashboard/tasks   (due-today / overdue / urgent buckets)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crm-backend/internal/domain"
	"github.com/tbourn/go-crm-backend/internal/utils"
)

// windowParams parses optional offset/limit query params. limit <= 0 means
// "no cap"; offset is clamped to >= 0.
func windowParams(c *gin.Context) (offset, limit int) {
	offset = utils.AtoiDefault(c.Query("offset"), 0)
	if offset < 0 {
		offset = 0
	}
	limit = utils.AtoiDefault(c.Query("limit"), 0)
	return
}

// window applies offset/limit to a slice, preserving order.
func window(tasks []domain.Task, offset, limit int) []domain.Task {
	if offset >= len(tasks) {
		return []domain.Task{}
	}
	tasks = tasks[offset:]
	if limit > 0 && limit < len(tasks) {
		tasks = tasks[:limit]
	}
	return tasks
}

// CreateTask godoc
// @ID          createTask
// @Summary     Create a task
// @Description Creates a follow-up task, optionally tied to a customer. Missing priority and status default to Medium/Pending.
// @Tags        Tasks
// @Accept      json
// @Produce     json
//
// @Param       body  body  domain.Task  true  "Task payload"
//
// @Success     201  {object} domain.Task
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     404  {object} handlers.ErrorResponse "Customer not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /tasks [post]
func (h *Handlers) CreateTask(c *gin.Context) {
	var req domain.Task
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	req.ID = 0

	created, err := h.taskSvc.Create(c.Request.Context(), &req)
	if err != nil {
		svcFail(c, err)
		return
	}
	ok(c, http.StatusCreated, created)
}

// ListTasks godoc
// @ID          listTasks
// @Summary     List tasks
// @Description Returns tasks ordered by due date, undated tasks last. Supports optional offset/limit windowing.
// @Tags        Tasks
// @Produce     json
//
// @Param       offset  query  int  false  "Rows to skip"       example(0)
// @Param       limit   query  int  false  "Max rows (0 = all)" example(50)
//
// @Success     200  {array}  domain.Task
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /tasks [get]
func (h *Handlers) ListTasks(c *gin.Context) {
	items, err := h.taskSvc.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	offset, limit := windowParams(c)
	ok(c, http.StatusOK, window(items, offset, limit))
}

// GetTask godoc
// @ID          getTask
// @Summary     Fetch a task
// @Tags        Tasks
// @Produce     json
//
// @Param       id  path  int  true  "Task ID"  example(3)
//
// @Success     200  {object} domain.Task
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Task not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /tasks/{id} [get]
func (h *Handlers) GetTask(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	task, err := h.taskSvc.Get(c.Request.Context(), id)
	if err != nil {
		svcFail(c, err)
		return
	}
	ok(c, http.StatusOK, task)
}

// UpdateTask godoc
// @ID          updateTask
// @Summary     Update a task
// @Tags        Tasks
// @Accept      json
// @Produce     json
//
// @Param       id    path  int          true  "Task ID"  example(3)
// @Param       body  body  domain.Task  true  "Updated fields"
//
// @Success     200  {object} domain.Task
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     404  {object} handlers.ErrorResponse "Task not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /tasks/{id} [put]
func (h *Handlers) UpdateTask(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	var req domain.Task
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	updated, err := h.taskSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		svcFail(c, err)
		return
	}
	ok(c, http.StatusOK, updated)
}

// DeleteTask godoc
// @ID          deleteTask
// @Summary     Delete a task
// @Tags        Tasks
// @Produce     json
//
// @Param       id  path  int  true  "Task ID"  example(3)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Task not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /tasks/{id} [delete]
func (h *Handlers) DeleteTask(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	if err := h.taskSvc.Delete(c.Request.Context(), id); err != nil {
		svcFail(c, err)
		return
	}
	noContent(c)
}

// TaskDashboard godoc
// @ID          taskDashboard
// @Summary     Task dashboard
// @Description Groups open tasks into due-today, overdue, and urgent buckets.
// @Tags        Tasks
// @Produce     json
//
// @Success     200  {object} services.TaskDashboard
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /dashboard/tasks [get]
func (h *Handlers) TaskDashboard(c *gin.Context) {
	dash, err := h.taskSvc.Dashboard(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, dash)
}
