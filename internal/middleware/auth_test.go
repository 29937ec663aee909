package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/taskdeck/internal/model"
)

// mockVerifier はauth.TokenVerifierのモック実装。
type mockVerifier struct {
	verifyFn func(ctx context.Context, token string) (*model.Identity, error)
}

func (m *mockVerifier) VerifyToken(ctx context.Context, token string) (*model.Identity, error) {
	if m.verifyFn != nil {
		return m.verifyFn(ctx, token)
	}
	return nil, fmt.Errorf("no verifier configured")
}

// okHandler は通過したリクエストのアイデンティティを記録するハンドラー。
func okHandler(t *testing.T, gotIdentity **model.Identity, gotToken *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, err := IdentityFromContext(r.Context()); err == nil {
			*gotIdentity = identity
		}
		if token, ok := AccessTokenFromContext(r.Context()); ok {
			*gotToken = token
		}
		w.WriteHeader(http.StatusOK)
	})
}

// decodeErrorBody は401レスポンスのエラーエンベロープをデコードする。
func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) ErrorResponseBody {
	t.Helper()
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	var identity *model.Identity
	var token string
	mw := NewAuthMiddleware(&mockVerifier{})
	handler := mw(okHandler(t, &identity, &token))

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	body := decodeErrorBody(t, w)
	if body.Success {
		t.Error("success = true, want false")
	}
	if body.Error != "Unauthorized" {
		t.Errorf("error = %q, want %q", body.Error, "Unauthorized")
	}
	if body.Message != "Missing Authorization header" {
		t.Errorf("message = %q", body.Message)
	}
	if identity != nil {
		t.Error("handler should not run for unauthenticated request")
	}
}

func TestAuthMiddleware_BadScheme(t *testing.T) {
	var identity *model.Identity
	var token string
	mw := NewAuthMiddleware(&mockVerifier{})
	handler := mw(okHandler(t, &identity, &token))

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	body := decodeErrorBody(t, w)
	if body.Message != "Invalid Authorization header format. Use: Bearer <token>" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestAuthMiddleware_EmptyToken(t *testing.T) {
	mw := NewAuthMiddleware(&mockVerifier{})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer ")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	body := decodeErrorBody(t, w)
	if body.Message != "Missing access token" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestAuthMiddleware_RejectedToken(t *testing.T) {
	mw := NewAuthMiddleware(&mockVerifier{
		verifyFn: func(ctx context.Context, token string) (*model.Identity, error) {
			return nil, fmt.Errorf("provider rejected token")
		},
	})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer expired-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	body := decodeErrorBody(t, w)
	if body.Message != "Invalid or expired token" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestAuthMiddleware_Success_InjectsIdentityAndToken(t *testing.T) {
	var identity *model.Identity
	var token string
	mw := NewAuthMiddleware(&mockVerifier{
		verifyFn: func(ctx context.Context, tok string) (*model.Identity, error) {
			if tok != "valid-token" {
				t.Errorf("token = %q, want %q", tok, "valid-token")
			}
			return &model.Identity{ID: "user-123", Email: "u@example.com"}, nil
		},
	})
	handler := mw(okHandler(t, &identity, &token))

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if identity == nil || identity.ID != "user-123" {
		t.Errorf("identity = %v, want user-123", identity)
	}
	if token != "valid-token" {
		t.Errorf("token in context = %q, want %q", token, "valid-token")
	}
}

func TestOptionalAuthMiddleware_InvalidTokenProceedsAnonymously(t *testing.T) {
	called := false
	mw := NewOptionalAuthMiddleware(&mockVerifier{
		verifyFn: func(ctx context.Context, token string) (*model.Identity, error) {
			return nil, fmt.Errorf("rejected")
		},
	})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, err := IdentityFromContext(r.Context()); err == nil {
			t.Error("identity should not be set for rejected token")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !called {
		t.Error("handler should run for optional auth")
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestOptionalAuthMiddleware_ValidTokenInjectsIdentity(t *testing.T) {
	mw := NewOptionalAuthMiddleware(&mockVerifier{
		verifyFn: func(ctx context.Context, token string) (*model.Identity, error) {
			return &model.Identity{ID: "user-456"}, nil
		},
	})
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := IdentityFromContext(r.Context())
		if err != nil {
			t.Errorf("IdentityFromContext error = %v", err)
			return
		}
		if identity.ID != "user-456" {
			t.Errorf("identity.ID = %q, want %q", identity.ID, "user-456")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)
}

func TestUserIDFromContext_Missing(t *testing.T) {
	if _, err := UserIDFromContext(context.Background()); err == nil {
		t.Error("expected error for context without identity")
	}
}
