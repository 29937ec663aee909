package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/taskdeck/internal/model"
)

// PostgresNoteRepo はPostgreSQLを使用したメモリポジトリ。
type PostgresNoteRepo struct {
	db *sql.DB
}

// NewPostgresNoteRepo はPostgresNoteRepoを生成する。
func NewPostgresNoteRepo(db *sql.DB) *PostgresNoteRepo {
	return &PostgresNoteRepo{db: db}
}

// noteUpdateColumns は部分更新で許可されるフィールド。
var noteUpdateColumns = []string{"content"}

const noteSelectColumns = `id, owner_id, content, created_at`

// ListByOwner は所有者のメモ一覧を作成日時の降順で返す。
func (r *PostgresNoteRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+noteSelectColumns+` FROM notes WHERE owner_id = $1 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		note := model.Note{}
		if err := rows.Scan(&note.ID, &note.OwnerID, &note.Content, &note.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}

	return notes, nil
}

// FindByOwner は指定IDかつ指定所有者のメモを取得する。見つからない場合はnilを返す。
func (r *PostgresNoteRepo) FindByOwner(ctx context.Context, id, ownerID string) (*model.Note, error) {
	// 不正なUUIDは存在しないレコードと同様に扱う
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	note := &model.Note{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+noteSelectColumns+` FROM notes WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	).Scan(&note.ID, &note.OwnerID, &note.Content, &note.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find note: %w", err)
	}

	return note, nil
}

// Create はメモを作成する。IDとCreatedAtはここで採番される。
func (r *PostgresNoteRepo) Create(ctx context.Context, note *model.Note) error {
	note.ID = uuid.New().String()
	note.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notes (id, owner_id, content, created_at) VALUES ($1, $2, $3, $4)`,
		note.ID, note.OwnerID, note.Content, note.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}

	return nil
}

// UpdateFields は検証済みフィールドセットで部分更新を行う。
// 見つからない場合（他所有者のレコードを含む）はnilを返す。
func (r *PostgresNoteRepo) UpdateFields(ctx context.Context, id, ownerID string, fields map[string]any) (*model.Note, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	setClauses, args, err := buildSetClauses(noteUpdateColumns, fields)
	if err != nil {
		return nil, err
	}

	args = append(args, id, ownerID)
	query := fmt.Sprintf(
		`UPDATE notes SET %s WHERE id = $%d AND owner_id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), len(args)-1, len(args), noteSelectColumns,
	)

	note := &model.Note{}
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&note.ID, &note.OwnerID, &note.Content, &note.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	return note, nil
}

// DeleteByOwner は指定IDかつ指定所有者のメモを削除する。
func (r *PostgresNoteRepo) DeleteByOwner(ctx context.Context, id, ownerID string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete note: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected > 0, nil
}

// compile-time interface check
var _ NoteRepository = (*PostgresNoteRepo)(nil)
