// Package repository はデータ永続化のインターフェースを定義する。
// すべての操作はレコードIDに加えて所有者IDで必ずフィルタされ、
// 他ユーザー所有のレコードは存在しないレコードと区別できない。
package repository

import (
	"context"

	"github.com/hitoshi/taskdeck/internal/model"
)

// TaskRepository はタスクデータの永続化インターフェース。
type TaskRepository interface {
	// ListByOwner は所有者のタスク一覧を作成日時の降順で返す。
	// 0件は空スライスでありエラーではない。
	ListByOwner(ctx context.Context, ownerID string) ([]model.Task, error)

	// FindByOwner は指定IDかつ指定所有者のタスクを取得する。
	// 見つからない場合はnilを返す。
	FindByOwner(ctx context.Context, id, ownerID string) (*model.Task, error)

	// Create はタスクを作成する。IDとCreatedAtはストア側で採番される。
	Create(ctx context.Context, task *model.Task) error

	// UpdateFields は検証済みフィールドセットで部分更新を行い、
	// 更新後のレコードを返す。見つからない場合はnilを返す。
	UpdateFields(ctx context.Context, id, ownerID string, fields map[string]any) (*model.Task, error)

	// DeleteByOwner は指定IDかつ指定所有者のタスクを削除する。
	// 削除された場合はtrueを返す。
	DeleteByOwner(ctx context.Context, id, ownerID string) (bool, error)
}

// NoteRepository はメモデータの永続化インターフェース。
type NoteRepository interface {
	// ListByOwner は所有者のメモ一覧を作成日時の降順で返す。
	ListByOwner(ctx context.Context, ownerID string) ([]model.Note, error)

	// FindByOwner は指定IDかつ指定所有者のメモを取得する。
	// 見つからない場合はnilを返す。
	FindByOwner(ctx context.Context, id, ownerID string) (*model.Note, error)

	// Create はメモを作成する。IDとCreatedAtはストア側で採番される。
	Create(ctx context.Context, note *model.Note) error

	// UpdateFields は検証済みフィールドセットで部分更新を行い、
	// 更新後のレコードを返す。見つからない場合はnilを返す。
	UpdateFields(ctx context.Context, id, ownerID string, fields map[string]any) (*model.Note, error)

	// DeleteByOwner は指定IDかつ指定所有者のメモを削除する。
	// 削除された場合はtrueを返す。
	DeleteByOwner(ctx context.Context, id, ownerID string) (bool, error)
}

// Pinger はストア接続の死活確認に必要なインターフェース。
// *sql.DBがそのまま満たす。
type Pinger interface {
	PingContext(ctx context.Context) error
}
