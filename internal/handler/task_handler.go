package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/taskdeck/internal/middleware"
	"github.com/hitoshi/taskdeck/internal/model"
)

// TaskService はタスクハンドラーが必要とするサービスインターフェース。
type TaskService interface {
	List(ctx context.Context, ownerID string) ([]model.Task, error)
	Get(ctx context.Context, id, ownerID string) (*model.Task, error)
	Create(ctx context.Context, ownerID string, input map[string]any) (*model.Task, error)
	Update(ctx context.Context, id, ownerID string, input map[string]any) (*model.Task, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// TaskHandler はタスクのHTTPエンドポイントを処理する。
type TaskHandler struct {
	service TaskService
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// List はGET /tasksを処理する。
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewAuthRejectedError("Invalid or expired token"))
		return
	}

	tasks, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeDataWithCount(w, toTaskResponses(tasks), len(tasks))
}

// Get はGET /tasks/{id}を処理する。
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewAuthRejectedError("Invalid or expired token"))
		return
	}

	t, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, toTaskResponse(t))
}

// Create はPOST /tasksを処理する。
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewAuthRejectedError("Invalid or expired token"))
		return
	}

	input, apiErr := decodeBody(r)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	t, err := h.service.Create(r.Context(), ownerID, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeDataWithMessage(w, http.StatusCreated, toTaskResponse(t), "Task created successfully")
}

// Update はPATCH /tasks/{id}を処理する。
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewAuthRejectedError("Invalid or expired token"))
		return
	}

	input, apiErr := decodeBody(r)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	t, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), ownerID, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeDataWithMessage(w, http.StatusOK, toTaskResponse(t), "Task updated successfully")
}

// Delete はDELETE /tasks/{id}を処理する。
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewAuthRejectedError("Invalid or expired token"))
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), ownerID); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, "Task deleted successfully")
}
