package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/taskdeck/internal/model"
)

// mockNoteService はNoteServiceのモック実装。
type mockNoteService struct {
	listFn   func(ctx context.Context, ownerID string) ([]model.Note, error)
	getFn    func(ctx context.Context, id, ownerID string) (*model.Note, error)
	createFn func(ctx context.Context, ownerID string, input map[string]any) (*model.Note, error)
	updateFn func(ctx context.Context, id, ownerID string, input map[string]any) (*model.Note, error)
	deleteFn func(ctx context.Context, id, ownerID string) error
}

func (m *mockNoteService) List(ctx context.Context, ownerID string) ([]model.Note, error) {
	return m.listFn(ctx, ownerID)
}

func (m *mockNoteService) Get(ctx context.Context, id, ownerID string) (*model.Note, error) {
	return m.getFn(ctx, id, ownerID)
}

func (m *mockNoteService) Create(ctx context.Context, ownerID string, input map[string]any) (*model.Note, error) {
	return m.createFn(ctx, ownerID, input)
}

func (m *mockNoteService) Update(ctx context.Context, id, ownerID string, input map[string]any) (*model.Note, error) {
	return m.updateFn(ctx, id, ownerID, input)
}

func (m *mockNoteService) Delete(ctx context.Context, id, ownerID string) error {
	return m.deleteFn(ctx, id, ownerID)
}

func TestNoteHandler_List(t *testing.T) {
	h := NewNoteHandler(&mockNoteService{
		listFn: func(ctx context.Context, ownerID string) ([]model.Note, error) {
			return []model.Note{
				{ID: "n1", OwnerID: ownerID, Content: "first", CreatedAt: time.Now()},
			}, nil
		},
	})

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/notes", nil), "user-1")
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decodeJSONBody(t, w)
	if body["count"] != float64(1) {
		t.Errorf("count = %v, want 1", body["count"])
	}
	data := body["data"].([]any)
	first := data[0].(map[string]any)
	if first["content"] != "first" {
		t.Errorf("content = %v", first["content"])
	}
}

func TestNoteHandler_Create(t *testing.T) {
	h := NewNoteHandler(&mockNoteService{
		createFn: func(ctx context.Context, ownerID string, input map[string]any) (*model.Note, error) {
			return &model.Note{ID: "n1", OwnerID: ownerID, Content: "remember", CreatedAt: time.Now()}, nil
		},
	})

	req := withIdentity(httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(`{"content":"remember"}`)), "user-1")
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	body := decodeJSONBody(t, w)
	if body["message"] != "Note created successfully" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestNoteHandler_Get_NotFound(t *testing.T) {
	h := NewNoteHandler(&mockNoteService{
		getFn: func(ctx context.Context, id, ownerID string) (*model.Note, error) {
			return nil, model.NewNoteNotFoundError()
		},
	})

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/notes/missing", nil), "user-1")
	req = withURLParam(req, "id", "missing")
	w := httptest.NewRecorder()
	h.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	body := decodeJSONBody(t, w)
	if body["message"] != "Note not found" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestNoteHandler_Delete(t *testing.T) {
	var gotID, gotOwner string
	h := NewNoteHandler(&mockNoteService{
		deleteFn: func(ctx context.Context, id, ownerID string) error {
			gotID, gotOwner = id, ownerID
			return nil
		},
	})

	req := withIdentity(httptest.NewRequest(http.MethodDelete, "/notes/n1", nil), "user-1")
	req = withURLParam(req, "id", "n1")
	w := httptest.NewRecorder()
	h.Delete(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotID != "n1" || gotOwner != "user-1" {
		t.Errorf("delete called with id=%q owner=%q", gotID, gotOwner)
	}
	body := decodeJSONBody(t, w)
	if body["message"] != "Note deleted successfully" {
		t.Errorf("message = %v", body["message"])
	}
}
