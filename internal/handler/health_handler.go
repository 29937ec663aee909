package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/taskdeck/internal/repository"
)

// healthCheckTimeout はデータベース死活確認のタイムアウト。
const healthCheckTimeout = 2 * time.Second

// HealthHandler はヘルスチェックエンドポイントを処理する。
type HealthHandler struct {
	db        repository.Pinger
	logger    *slog.Logger
	startTime time.Time
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(db repository.Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Health はGET /healthを処理する。
// データベース到達可能ならstatus=okで200、不達ならstatus=degradedで503を返す。
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := "ok"
	dbStatus := "ok"
	statusCode := http.StatusOK

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Error("database health check failed", slog.Any("error", err))
		status = "degraded"
		dbStatus = "unreachable"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, map[string]any{
		"success":        statusCode == http.StatusOK,
		"status":         status,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		"services": map[string]string{
			"database": dbStatus,
		},
	})
}
