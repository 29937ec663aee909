package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/taskdeck/internal/middleware"
	"github.com/hitoshi/taskdeck/internal/model"
)

// NoteService はメモハンドラーが必要とするサービスインターフェース。
type NoteService interface {
	List(ctx context.Context, ownerID string) ([]model.Note, error)
	Get(ctx context.Context, id, ownerID string) (*model.Note, error)
	Create(ctx context.Context, ownerID string, input map[string]any) (*model.Note, error)
	Update(ctx context.Context, id, ownerID string, input map[string]any) (*model.Note, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// NoteHandler はメモのHTTPエンドポイントを処理する。
type NoteHandler struct {
	service NoteService
}

// NewNoteHandler はNoteHandlerを生成する。
func NewNoteHandler(service NoteService) *NoteHandler {
	return &NoteHandler{service: service}
}

// List はGET /notesを処理する。
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewAuthRejectedError("Invalid or expired token"))
		return
	}

	notes, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeDataWithCount(w, toNoteResponses(notes), len(notes))
}

// Get はGET /notes/{id}を処理する。
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewAuthRejectedError("Invalid or expired token"))
		return
	}

	n, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, toNoteResponse(n))
}

// Create はPOST /notesを処理する。
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	n, err := h.service.Create(r.Context(), ownerID, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeDataWithMessage(w, http.StatusCreated, toNoteResponse(n), "Note created successfully")
}

// Update はPATCH /notes/{id}を処理する。
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	n, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), ownerID, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeDataWithMessage(w, http.StatusOK, toNoteResponse(n), "Note updated successfully")
}

// Delete はDELETE /notes/{id}を処理する。
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, model.NewAuthRejectedError("Invalid or expired token"))
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), ownerID); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, "Note deleted successfully")
}
