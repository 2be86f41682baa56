package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/approval-platform/internal/api/metrics"
	"github.com/taskflow/approval-platform/internal/core/domain"
	"github.com/taskflow/approval-platform/internal/core/ports"
)

// TaskHandler handles HTTP requests for the task workflow.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// Create handles POST /tasks.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task details"
// @Success      201   {object}  taskResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	username, err := ctxSubject(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.service.Create(c.Request().Context(), ports.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		AssignedUser: req.AssignedUser,
		CreatedBy:    username,
	})
	if err != nil {
		return err
	}
	metrics.TasksCreatedTotal.Inc()

	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

// List handles GET /tasks.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by status"  Enums(PENDING, APPROVED, REJECTED)
// @Success      200     {array}   taskResponse
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	if _, err := ctxSubject(c); err != nil {
		return err
	}

	tasks, err := h.service.List(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return err
	}

	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return c.JSON(http.StatusOK, out)
}

// Approve handles PUT /tasks/{id}/approve.
//
// @Summary      Approve a pending task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  taskResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /tasks/{id}/approve [put]
func (h *TaskHandler) Approve(c echo.Context) error {
	return h.transition(c, domain.ActionApprove, h.service.Approve)
}

// Reject handles PUT /tasks/{id}/reject.
//
// @Summary      Reject a pending task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  taskResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /tasks/{id}/reject [put]
func (h *TaskHandler) Reject(c echo.Context) error {
	return h.transition(c, domain.ActionReject, h.service.Reject)
}

type transitionFunc func(ctx context.Context, in ports.TransitionTaskInput) (*domain.Task, error)

func (h *TaskHandler) transition(c echo.Context, action domain.TaskAction, apply transitionFunc) error {
	username, role, err := ctxClaims(c)
	if err != nil {
		metrics.TaskTransitionsTotal.WithLabelValues(string(action), metrics.TransitionResult(err)).Inc()
		return err
	}

	task, err := apply(c.Request().Context(), ports.TransitionTaskInput{
		TaskID:   c.Param("id"),
		Username: username,
		Role:     role,
	})
	metrics.TaskTransitionsTotal.WithLabelValues(string(action), metrics.TransitionResult(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toTaskResponse(task))
}
