package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/approval-platform/internal/api/middleware"
	"github.com/taskflow/approval-platform/internal/core/domain"
	"github.com/taskflow/approval-platform/internal/core/ports"
)

type stubTaskService struct {
	createFn  func(ctx context.Context, in ports.CreateTaskInput) (*domain.Task, error)
	listFn    func(ctx context.Context, status string) ([]*domain.Task, error)
	approveFn func(ctx context.Context, in ports.TransitionTaskInput) (*domain.Task, error)
	rejectFn  func(ctx context.Context, in ports.TransitionTaskInput) (*domain.Task, error)
}

func (s *stubTaskService) Create(ctx context.Context, in ports.CreateTaskInput) (*domain.Task, error) {
	return s.createFn(ctx, in)
}

func (s *stubTaskService) List(ctx context.Context, status string) ([]*domain.Task, error) {
	return s.listFn(ctx, status)
}

func (s *stubTaskService) Approve(ctx context.Context, in ports.TransitionTaskInput) (*domain.Task, error) {
	return s.approveFn(ctx, in)
}

func (s *stubTaskService) Reject(ctx context.Context, in ports.TransitionTaskInput) (*domain.Task, error) {
	return s.rejectFn(ctx, in)
}

var fixedCreated = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func authed(c echo.Context, username string, role domain.Role) echo.Context {
	c.Set(middleware.UsernameKey, username)
	c.Set(middleware.RoleKey, role)
	return c
}

func TestTaskHandler_Create_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubTaskService{
		createFn: func(ctx context.Context, in ports.CreateTaskInput) (*domain.Task, error) {
			if in.Title != "Ship it" || in.AssignedUser != "bob" || in.CreatedBy != "alice" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Task{ID: "t1", Title: in.Title, Description: in.Description, Status: domain.StatusPending, AssignedUser: in.AssignedUser, CreatedDate: fixedCreated}, nil
		},
	}
	handler := NewTaskHandler(stub)

	rec := httptest.NewRecorder()
	c := authed(e.NewContext(jsonRequest(http.MethodPost, "/tasks", `{"title":"Ship it","description":"v1","assignedUser":"bob"}`), rec), "alice", domain.RoleUser)

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != "t1" || resp["status"] != "PENDING" || resp["assignedUser"] != "bob" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp["createdDate"] != "2026-03-01T09:00:00Z" {
		t.Fatalf("unexpected createdDate: %v", resp["createdDate"])
	}
}

func TestTaskHandler_Create_MissingTitle(t *testing.T) {
	e := newTestEcho()
	handler := NewTaskHandler(&stubTaskService{})

	c := authed(e.NewContext(jsonRequest(http.MethodPost, "/tasks", `{"description":"no title"}`), httptest.NewRecorder()), "alice", domain.RoleUser)

	if err := handler.Create(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestTaskHandler_Create_Unauthenticated(t *testing.T) {
	e := newTestEcho()
	handler := NewTaskHandler(&stubTaskService{})

	c := e.NewContext(jsonRequest(http.MethodPost, "/tasks", `{"title":"x"}`), httptest.NewRecorder())

	if err := handler.Create(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTaskHandler_List_PassesStatusFilter(t *testing.T) {
	e := newTestEcho()
	stub := &stubTaskService{
		listFn: func(ctx context.Context, status string) ([]*domain.Task, error) {
			if status != "APPROVED" {
				t.Fatalf("unexpected status %q", status)
			}
			return []*domain.Task{{ID: "t1", Title: "a", Status: domain.StatusApproved, CreatedDate: fixedCreated}}, nil
		},
	}
	handler := NewTaskHandler(stub)

	rec := httptest.NewRecorder()
	c := authed(e.NewContext(httptest.NewRequest(http.MethodGet, "/tasks?status=APPROVED", nil), rec), "alice", domain.RoleUser)

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp []taskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 1 || resp[0].Status != "APPROVED" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestTaskHandler_List_EmptyIsArray(t *testing.T) {
	e := newTestEcho()
	stub := &stubTaskService{
		listFn: func(ctx context.Context, status string) ([]*domain.Task, error) { return nil, nil },
	}

	rec := httptest.NewRecorder()
	c := authed(e.NewContext(httptest.NewRequest(http.MethodGet, "/tasks", nil), rec), "alice", domain.RoleUser)

	if err := NewTaskHandler(stub).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Fatalf("expected empty array, got %q", got)
	}
}

func TestTaskHandler_Approve_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubTaskService{
		approveFn: func(ctx context.Context, in ports.TransitionTaskInput) (*domain.Task, error) {
			if in.TaskID != "t1" || in.Username != "mia" || in.Role != domain.RoleManager {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Task{ID: "t1", Status: domain.StatusApproved, CreatedDate: fixedCreated}, nil
		},
	}
	handler := NewTaskHandler(stub)

	rec := httptest.NewRecorder()
	c := authed(e.NewContext(httptest.NewRequest(http.MethodPut, "/tasks/t1/approve", nil), rec), "mia", domain.RoleManager)
	c.SetParamNames("id")
	c.SetParamValues("t1")

	if err := handler.Approve(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp taskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Status != "APPROVED" {
		t.Fatalf("unexpected status %s", resp.Status)
	}
}

func TestTaskHandler_Reject_PropagatesWorkflowErrors(t *testing.T) {
	for _, want := range []error{domain.ErrTaskNotFound, domain.ErrInvalidTransition, domain.ErrWriteConflict, domain.ErrForbidden} {
		t.Run(want.Error(), func(t *testing.T) {
			e := newTestEcho()
			stub := &stubTaskService{
				rejectFn: func(ctx context.Context, in ports.TransitionTaskInput) (*domain.Task, error) {
					return nil, want
				},
			}

			c := authed(e.NewContext(httptest.NewRequest(http.MethodPut, "/tasks/t1/reject", nil), httptest.NewRecorder()), "mia", domain.RoleAdmin)
			c.SetParamNames("id")
			c.SetParamValues("t1")

			if err := NewTaskHandler(stub).Reject(c); !errors.Is(err, want) {
				t.Fatalf("expected %v, got %v", want, err)
			}
		})
	}
}

func TestTaskHandler_Transition_MissingClaims(t *testing.T) {
	tests := []struct {
		name     string
		username string
		role     any
		want     error
	}{
		{"no subject", "", domain.RoleAdmin, domain.ErrUnauthorized},
		{"no role", "mia", nil, domain.ErrForbidden},
		{"unknown role", "mia", domain.Role("ROOT"), domain.ErrForbidden},
		{"role of wrong type", "mia", "ADMIN", domain.ErrForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho()
			stub := &stubTaskService{
				approveFn: func(ctx context.Context, in ports.TransitionTaskInput) (*domain.Task, error) {
					t.Fatalf("should not be called")
					return nil, nil
				},
			}

			c := e.NewContext(httptest.NewRequest(http.MethodPut, "/tasks/t1/approve", nil), httptest.NewRecorder())
			if tc.username != "" {
				c.Set(middleware.UsernameKey, tc.username)
			}
			if tc.role != nil {
				c.Set(middleware.RoleKey, tc.role)
			}

			if err := NewTaskHandler(stub).Approve(c); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestTaskHandler_List_ResponseCarriesOnlyTaskFields(t *testing.T) {
	e := newTestEcho()
	stub := &stubTaskService{
		listFn: func(ctx context.Context, status string) ([]*domain.Task, error) {
			return []*domain.Task{{
				ID:           "t1",
				Title:        "Ship it",
				Status:       domain.StatusRejected,
				AssignedUser: "bob",
				CreatedBy:    "alice",
				CreatedDate:  fixedCreated,
				UpdatedAt:    fixedCreated.Add(time.Hour),
			}}, nil
		},
	}
	handler := NewTaskHandler(stub)

	rec := httptest.NewRecorder()
	c := authed(e.NewContext(httptest.NewRequest(http.MethodGet, "/tasks", nil), rec), "alice", domain.RoleUser)

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("expected 1 task, got %d", len(resp))
	}

	want := []string{"id", "title", "description", "status", "assignedUser", "createdDate"}
	if len(resp[0]) != len(want) {
		t.Fatalf("unexpected keys: %v", resp[0])
	}
	for _, k := range want {
		if _, ok := resp[0][k]; !ok {
			t.Fatalf("missing key %q in %v", k, resp[0])
		}
	}
}
