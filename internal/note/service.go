// Package note はメモリソースのビジネスロジックを提供する。
package note

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hitoshi/taskdeck/internal/model"
	"github.com/hitoshi/taskdeck/internal/repository"
	"github.com/hitoshi/taskdeck/internal/validation"
)

// schema はメモのフィールド定義。可変フィールドはcontentのみ。
var schema = validation.Schema{
	Fields: []validation.Field{
		{Name: "content", Label: "Content", Type: validation.TypeString, Required: true, MaxLen: model.NoteContentMaxLen},
	},
}

// storeFailureRecorder はストア操作失敗のメトリクス記録先。
type storeFailureRecorder interface {
	RecordStoreFailure(operation string)
}

// Service はメモのCRUD操作を提供する。
// すべての操作は呼び出し元の所有者IDにスコープされる。
type Service struct {
	repo    repository.NoteRepository
	logger  *slog.Logger
	metrics storeFailureRecorder
}

// NewService はServiceを生成する。
func NewService(repo repository.NoteRepository, logger *slog.Logger, metrics storeFailureRecorder) *Service {
	return &Service{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
	}
}

// List は所有者のメモ一覧を作成日時の降順で返す。
func (s *Service) List(ctx context.Context, ownerID string) ([]model.Note, error) {
	notes, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list notes", slog.String("user_id", ownerID), slog.Any("error", err))
		s.metrics.RecordStoreFailure("list_notes")
		return nil, model.NewStoreError("Failed to fetch notes")
	}
	return notes, nil
}

// Get は指定IDのメモを返す。他ユーザー所有・存在しないメモは
// 区別せず未検出エラーになる。
func (s *Service) Get(ctx context.Context, id, ownerID string) (*model.Note, error) {
	n, err := s.repo.FindByOwner(ctx, id, ownerID)
	if err != nil {
		s.logger.Error("failed to fetch note", slog.String("note_id", id), slog.Any("error", err))
		s.metrics.RecordStoreFailure("fetch_note")
		return nil, model.NewStoreError("Failed to fetch note")
	}
	if n == nil {
		return nil, model.NewNoteNotFoundError()
	}
	return n, nil
}

// Create は入力を検証してメモを作成する。所有者は検証済み
// アイデンティティから設定され、リクエストボディの値は使われない。
func (s *Service) Create(ctx context.Context, ownerID string, input map[string]any) (*model.Note, error) {
	fields, failures := schema.ValidateCreate(input)
	if len(failures) > 0 {
		return nil, model.NewValidationError(strings.Join(failures, ", "))
	}

	n := &model.Note{
		OwnerID: ownerID,
		Content: fields["content"].(string),
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("failed to create note", slog.String("user_id", ownerID), slog.Any("error", err))
		s.metrics.RecordStoreFailure("create_note")
		return nil, model.NewStoreError("Failed to create note")
	}
	return n, nil
}

// Update は入力の定義済みフィールドのみで部分更新を行う。
func (s *Service) Update(ctx context.Context, id, ownerID string, input map[string]any) (*model.Note, error) {
	fields, failures := schema.ValidateUpdate(input)
	if len(failures) > 0 {
		return nil, model.NewValidationError(strings.Join(failures, ", "))
	}
	if len(fields) == 0 {
		return nil, model.NewValidationError("No valid fields to update")
	}

	n, err := s.repo.UpdateFields(ctx, id, ownerID, fields)
	if err != nil {
		s.logger.Error("failed to update note", slog.String("note_id", id), slog.Any("error", err))
		s.metrics.RecordStoreFailure("update_note")
		return nil, model.NewStoreError("Failed to update note")
	}
	if n == nil {
		return nil, model.NewNoteNotFoundError()
	}
	return n, nil
}

// Delete は指定IDのメモを削除する。存在確認を先に行い、
// 見つからない場合は未検出エラーを返す。
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	n, err := s.repo.FindByOwner(ctx, id, ownerID)
	if err != nil {
		s.logger.Error("failed to fetch note before delete", slog.String("note_id", id), slog.Any("error", err))
		s.metrics.RecordStoreFailure("delete_note")
		return model.NewStoreError("Failed to delete note")
	}
	if n == nil {
		return model.NewNoteNotFoundError()
	}

	deleted, err := s.repo.DeleteByOwner(ctx, id, ownerID)
	if err != nil {
		s.logger.Error("failed to delete note", slog.String("note_id", id), slog.Any("error", err))
		s.metrics.RecordStoreFailure("delete_note")
		return model.NewStoreError("Failed to delete note")
	}
	if !deleted {
		// 存在確認後に消えている場合は一般的なストア障害として扱う
		s.logger.Error("note vanished between fetch and delete", slog.String("note_id", id))
		s.metrics.RecordStoreFailure("delete_note")
		return model.NewStoreError("Failed to delete note")
	}
	return nil
}
