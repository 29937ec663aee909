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

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

// taskUpdateColumns は部分更新で許可されるフィールドとカラムの対応。
// SET句はこの順序で組み立てられる。
var taskUpdateColumns = []string{"title", "completed", "due_date", "priority"}

const taskSelectColumns = `id, owner_id, title, completed, due_date, priority, created_at`

// ListByOwner は所有者のタスク一覧を作成日時の降順で返す。
func (r *PostgresTaskRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskSelectColumns+` FROM tasks WHERE owner_id = $1 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	return tasks, nil
}

// FindByOwner は指定IDかつ指定所有者のタスクを取得する。見つからない場合はnilを返す。
func (r *PostgresTaskRepo) FindByOwner(ctx context.Context, id, ownerID string) (*model.Task, error) {
	// 不正なUUIDは存在しないレコードと同様に扱う
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskSelectColumns+` FROM tasks WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// Create はタスクを作成する。IDとCreatedAtはここで採番される。
func (r *PostgresTaskRepo) Create(ctx context.Context, task *model.Task) error {
	task.ID = uuid.New().String()
	task.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, owner_id, title, completed, due_date, priority, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		task.ID, task.OwnerID, task.Title, task.Completed, task.DueDate, string(task.Priority), task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

// UpdateFields は検証済みフィールドセットで部分更新を行う。
// 見つからない場合（他所有者のレコードを含む）はnilを返す。
func (r *PostgresTaskRepo) UpdateFields(ctx context.Context, id, ownerID string, fields map[string]any) (*model.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	setClauses, args, err := buildSetClauses(taskUpdateColumns, fields)
	if err != nil {
		return nil, err
	}

	args = append(args, id, ownerID)
	query := fmt.Sprintf(
		`UPDATE tasks SET %s WHERE id = $%d AND owner_id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), len(args)-1, len(args), taskSelectColumns,
	)

	task, err := scanTask(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteByOwner は指定IDかつ指定所有者のタスクを削除する。
func (r *PostgresTaskRepo) DeleteByOwner(ctx context.Context, id, ownerID string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected > 0, nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通部分。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask は1行をmodel.Taskに読み取る。
func scanTask(row rowScanner) (*model.Task, error) {
	task := &model.Task{}
	var dueDate sql.NullTime
	var priority string

	err := row.Scan(&task.ID, &task.OwnerID, &task.Title, &task.Completed, &dueDate, &priority, &task.CreatedAt)
	if err != nil {
		return nil, err
	}

	task.Priority = model.Priority(priority)
	if dueDate.Valid {
		d := dueDate.Time.UTC()
		task.DueDate = &d
	}

	return task, nil
}

// buildSetClauses は許可カラムの順序でSET句とプレースホルダ引数を組み立てる。
// フィールドセットに許可外のキーが含まれる場合はエラーを返す。
func buildSetClauses(allowed []string, fields map[string]any) ([]string, []any, error) {
	if len(fields) == 0 {
		return nil, nil, fmt.Errorf("empty fieldset")
	}

	known := make(map[string]bool, len(allowed))
	for _, col := range allowed {
		known[col] = true
	}
	for key := range fields {
		if !known[key] {
			return nil, nil, fmt.Errorf("unknown field: %s", key)
		}
	}

	var clauses []string
	var args []any
	for _, col := range allowed {
		value, ok := fields[col]
		if !ok {
			continue
		}
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	return clauses, args, nil
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
