// Package task はタスクリソースのビジネスロジックを提供する。
package task

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/taskdeck/internal/model"
	"github.com/hitoshi/taskdeck/internal/repository"
	"github.com/hitoshi/taskdeck/internal/validation"
)

// schema はタスクのフィールド定義。作成・更新の両方で共有する。
var schema = validation.Schema{
	Fields: []validation.Field{
		{Name: "title", Label: "Title", Type: validation.TypeString, Required: true, MaxLen: model.TaskTitleMaxLen},
		{Name: "completed", Label: "Completed", Type: validation.TypeBool, Default: false},
		{Name: "due_date", Label: "Due date", Type: validation.TypeDate},
		{Name: "priority", Label: "Priority", Type: validation.TypeEnum, Enum: priorityEnum(), Default: string(model.PriorityMedium)},
	},
}

// priorityEnum はモデル定義の優先度一覧を検証用の文字列リストに変換する。
func priorityEnum() []string {
	values := make([]string, len(model.ValidPriorities))
	for i, p := range model.ValidPriorities {
		values[i] = string(p)
	}
	return values
}

// storeFailureRecorder はストア操作失敗のメトリクス記録先。
type storeFailureRecorder interface {
	RecordStoreFailure(operation string)
}

// Service はタスクのCRUD操作を提供する。
// すべての操作は呼び出し元の所有者IDにスコープされる。
type Service struct {
	repo    repository.TaskRepository
	logger  *slog.Logger
	metrics storeFailureRecorder
}

// NewService はServiceを生成する。
func NewService(repo repository.TaskRepository, logger *slog.Logger, metrics storeFailureRecorder) *Service {
	return &Service{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
	}
}

// List は所有者のタスク一覧を作成日時の降順で返す。
func (s *Service) List(ctx context.Context, ownerID string) ([]model.Task, error) {
	tasks, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list tasks", slog.String("user_id", ownerID), slog.Any("error", err))
		s.metrics.RecordStoreFailure("list_tasks")
		return nil, model.NewStoreError("Failed to fetch tasks")
	}
	return tasks, nil
}

// Get は指定IDのタスクを返す。他ユーザー所有・存在しないタスクは
// 区別せず未検出エラーになる。
func (s *Service) Get(ctx context.Context, id, ownerID string) (*model.Task, error) {
	t, err := s.repo.FindByOwner(ctx, id, ownerID)
	if err != nil {
		s.logger.Error("failed to fetch task", slog.String("task_id", id), slog.Any("error", err))
		s.metrics.RecordStoreFailure("fetch_task")
		return nil, model.NewStoreError("Failed to fetch task")
	}
	if t == nil {
		return nil, model.NewTaskNotFoundError()
	}
	return t, nil
}

// Create は入力を検証してタスクを作成する。所有者は検証済み
// アイデンティティから設定され、リクエストボディの値は使われない。
func (s *Service) Create(ctx context.Context, ownerID string, input map[string]any) (*model.Task, error) {
	fields, failures := schema.ValidateCreate(input)
	if len(failures) > 0 {
		return nil, model.NewValidationError(strings.Join(failures, ", "))
	}

	t := &model.Task{
		OwnerID:   ownerID,
		Title:     fields["title"].(string),
		Completed: fields["completed"].(bool),
		Priority:  model.Priority(fields["priority"].(string)),
	}
	if due, ok := fields["due_date"].(*time.Time); ok {
		t.DueDate = due
	}

	if err := s.repo.Create(ctx, t); err != nil {
		s.logger.Error("failed to create task", slog.String("user_id", ownerID), slog.Any("error", err))
		s.metrics.RecordStoreFailure("create_task")
		return nil, model.NewStoreError("Failed to create task")
	}
	return t, nil
}

// Update は入力の定義済みフィールドのみで部分更新を行う。
// 認識できるフィールドが1つも無い場合はバリデーションエラーになる。
func (s *Service) Update(ctx context.Context, id, ownerID string, input map[string]any) (*model.Task, error) {
	fields, failures := schema.ValidateUpdate(input)
	if len(failures) > 0 {
		return nil, model.NewValidationError(strings.Join(failures, ", "))
	}
	if len(fields) == 0 {
		return nil, model.NewValidationError("No valid fields to update")
	}

	t, err := s.repo.UpdateFields(ctx, id, ownerID, fields)
	if err != nil {
		s.logger.Error("failed to update task", slog.String("task_id", id), slog.Any("error", err))
		s.metrics.RecordStoreFailure("update_task")
		return nil, model.NewStoreError("Failed to update task")
	}
	if t == nil {
		return nil, model.NewTaskNotFoundError()
	}
	return t, nil
}

// Delete は指定IDのタスクを削除する。存在確認を先に行い、
// 見つからない場合は未検出エラーを返す。
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	t, err := s.repo.FindByOwner(ctx, id, ownerID)
	if err != nil {
		s.logger.Error("failed to fetch task before delete", slog.String("task_id", id), slog.Any("error", err))
		s.metrics.RecordStoreFailure("delete_task")
		return model.NewStoreError("Failed to delete task")
	}
	if t == nil {
		return model.NewTaskNotFoundError()
	}

	deleted, err := s.repo.DeleteByOwner(ctx, id, ownerID)
	if err != nil {
		s.logger.Error("failed to delete task", slog.String("task_id", id), slog.Any("error", err))
		s.metrics.RecordStoreFailure("delete_task")
		return model.NewStoreError("Failed to delete task")
	}
	if !deleted {
		// 存在確認後に消えている場合は一般的なストア障害として扱う
		s.logger.Error("task vanished between fetch and delete", slog.String("task_id", id))
		s.metrics.RecordStoreFailure("delete_task")
		return model.NewStoreError("Failed to delete task")
	}
	return nil
}
