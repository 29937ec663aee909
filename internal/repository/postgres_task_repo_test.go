package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/taskdeck/internal/model"
)

// PostgresTaskRepoはTaskRepositoryインターフェースを満たすことを検証
func TestPostgresTaskRepo_ImplementsInterface(t *testing.T) {
	var _ TaskRepository = (*PostgresTaskRepo)(nil)
}

func TestNewPostgresTaskRepo_Initializes(t *testing.T) {
	repo := NewPostgresTaskRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// 不正なUUIDはDBに問い合わせず「見つからない」として扱われる
func TestPostgresTaskRepo_InvalidUUID_TreatedAsNotFound(t *testing.T) {
	repo := NewPostgresTaskRepo(nil) // dbに触れた場合はnil参照でパニックする

	ctx := context.Background()

	task, err := repo.FindByOwner(ctx, "not-a-uuid", "owner-1")
	if err != nil {
		t.Errorf("FindByOwner error = %v", err)
	}
	if task != nil {
		t.Errorf("FindByOwner = %v, want nil", task)
	}

	updated, err := repo.UpdateFields(ctx, "not-a-uuid", "owner-1", map[string]any{"completed": true})
	if err != nil {
		t.Errorf("UpdateFields error = %v", err)
	}
	if updated != nil {
		t.Errorf("UpdateFields = %v, want nil", updated)
	}

	deleted, err := repo.DeleteByOwner(ctx, "not-a-uuid", "owner-1")
	if err != nil {
		t.Errorf("DeleteByOwner error = %v", err)
	}
	if deleted {
		t.Error("DeleteByOwner = true, want false")
	}
}

func TestBuildSetClauses_OrderAndPlaceholders(t *testing.T) {
	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	clauses, args, err := buildSetClauses(taskUpdateColumns, map[string]any{
		"priority":  "high",
		"title":     "updated",
		"due_date":  &due,
		"completed": true,
	})
	if err != nil {
		t.Fatalf("buildSetClauses error = %v", err)
	}

	// SET句は許可カラムの定義順で安定している
	got := strings.Join(clauses, ", ")
	want := "title = $1, completed = $2, due_date = $3, priority = $4"
	if got != want {
		t.Errorf("clauses = %q, want %q", got, want)
	}

	if len(args) != 4 {
		t.Fatalf("args length = %d, want 4", len(args))
	}
	if args[0] != "updated" || args[1] != true || args[3] != "high" {
		t.Errorf("args = %v", args)
	}
}

func TestBuildSetClauses_RejectsUnknownField(t *testing.T) {
	_, _, err := buildSetClauses(taskUpdateColumns, map[string]any{"owner_id": "attacker"})
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	if !strings.Contains(err.Error(), "owner_id") {
		t.Errorf("error = %v, should name the offending field", err)
	}
}

func TestBuildSetClauses_RejectsEmptyFieldset(t *testing.T) {
	_, _, err := buildSetClauses(taskUpdateColumns, map[string]any{})
	if err == nil {
		t.Fatal("expected error for empty fieldset")
	}
}

// Taskモデルのフィールドが正しく構築されることを検証
func TestTaskModel_Fields(t *testing.T) {
	now := time.Now()
	due := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	task := &model.Task{
		ID:        "task-id-1",
		OwnerID:   "owner-id-1",
		Title:     "牛乳を買う",
		Completed: false,
		DueDate:   &due,
		Priority:  model.PriorityMedium,
		CreatedAt: now,
	}

	if task.OwnerID != "owner-id-1" {
		t.Errorf("task.OwnerID = %q, want %q", task.OwnerID, "owner-id-1")
	}
	if task.Priority != model.PriorityMedium {
		t.Errorf("task.Priority = %q, want %q", task.Priority, model.PriorityMedium)
	}
	if task.DueDate == nil || !task.DueDate.Equal(due) {
		t.Errorf("task.DueDate = %v, want %v", task.DueDate, due)
	}
}
