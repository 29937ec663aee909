package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/taskdeck/internal/auth"
	"github.com/hitoshi/taskdeck/internal/metrics"
	"github.com/hitoshi/taskdeck/internal/middleware"
)

// RouterDeps はルーター構築に必要な依存一式。
type RouterDeps struct {
	Logger        *slog.Logger
	Verifier      auth.TokenVerifier
	TaskHandler   *TaskHandler
	NoteHandler   *NoteHandler
	AuthHandler   *AuthHandler
	HealthHandler *HealthHandler
	Collector     metrics.MetricsCollector
	Gatherer      prometheus.Gatherer

	// CORSAllowedOrigin は許可するフロントエンドのオリジン。
	CORSAllowedOrigin string
	// ExposeStack がtrueの場合、panic時のレスポンスにスタックを含める（開発環境のみ）。
	ExposeStack bool
}

// NewRouter はAPIのルーティングとミドルウェアチェーンを構築する。
// ミドルウェアの適用順はCORS→メトリクス→ロギング→リカバリー→ボディ上限。
// /tasksと/notes配下は認証必須、それ以外は公開エンドポイント。
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Collector != nil {
		r.Use(metrics.NewMetricsMiddleware(deps.Collector))
	}
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewRecoveryMiddleware(deps.ExposeStack))
	// ボディ上限は公開エンドポイントを含む全ルートに適用する
	r.Use(middleware.NewBodyLimitMiddleware(middleware.DefaultMaxBodyBytes))

	// 公開エンドポイント
	r.Get("/", rootHandler)
	r.Get("/health", deps.HealthHandler.Health)
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}
	if deps.AuthHandler != nil {
		r.Post("/auth/signup", deps.AuthHandler.SignUp)
		r.Post("/auth/signin", deps.AuthHandler.SignIn)
	}

	// 認証必須エンドポイント
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.Verifier))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", deps.TaskHandler.List)
			r.Post("/", deps.TaskHandler.Create)
			r.Get("/{id}", deps.TaskHandler.Get)
			r.Patch("/{id}", deps.TaskHandler.Update)
			r.Delete("/{id}", deps.TaskHandler.Delete)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", deps.NoteHandler.List)
			r.Post("/", deps.NoteHandler.Create)
			r.Get("/{id}", deps.NoteHandler.Get)
			r.Patch("/{id}", deps.NoteHandler.Update)
			r.Delete("/{id}", deps.NoteHandler.Delete)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, middleware.ErrorResponseBody{
			Success: false,
			Error:   "Not Found",
			Message: fmt.Sprintf("Route %s %s not found", r.Method, r.URL.Path),
		})
	})

	return r
}

// rootHandler はAPIのエンドポイント一覧を返す。
func rootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "TaskDeck API",
		"endpoints": map[string]string{
			"health": "/health",
			"tasks":  "/tasks",
			"notes":  "/notes",
		},
	})
}
