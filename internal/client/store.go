package client

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MutationState は直近の楽観的更新の状態を表す。
type MutationState int

const (
	// StateIdle は進行中の更新が無い状態。
	StateIdle MutationState = iota
	// StateApplied はローカルに適用済みでサーバー確認待ちの状態。
	StateApplied
	// StateConfirmed はサーバーが更新を確定した状態。
	StateConfirmed
	// StateRolledBack はサーバー拒否によりローカル変更を巻き戻した状態。
	StateRolledBack
)

// String はMutationStateの文字列表現を返す。
func (s MutationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateApplied:
		return "applied"
	case StateConfirmed:
		return "confirmed"
	case StateRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// taskAPI はTaskStoreが必要とするクライアント操作。
type taskAPI interface {
	ListTasks(ctx context.Context) ([]Task, error)
	CreateTask(ctx context.Context, fields map[string]any) (*Task, error)
	UpdateTask(ctx context.Context, id string, fields map[string]any) (*Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// TaskStore はタスクのローカルコピーを保持し、楽観的更新を行う。
// 各変更はまずローカルに適用され、サーバーが拒否した場合のみ巻き戻される。
// 表示側はNotifyコールバックで変更の都度最新のスナップショットを受け取る。
type TaskStore struct {
	api taskAPI

	mu        sync.Mutex
	tasks     []Task
	lastState MutationState
	notify    func([]Task)
}

// NewTaskStore はTaskStoreを生成する。
func NewTaskStore(api taskAPI) *TaskStore {
	return &TaskStore{api: api}
}

// SetNotify は変更通知コールバックを設定する。
func (s *TaskStore) SetNotify(fn func([]Task)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = fn
}

// Tasks は現在のスナップショットのコピーを返す。
func (s *TaskStore) Tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// LastMutation は直近の更新の状態を返す。
func (s *TaskStore) LastMutation() MutationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastState
}

// Load はサーバーから一覧を取得してローカルコピーを置き換える。
func (s *TaskStore) Load(ctx context.Context) error {
	tasks, err := s.api.ListTasks(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.tasks = tasks
	s.lastState = StateIdle
	s.notifyLocked()
	s.mu.Unlock()
	return nil
}

// Create はタスクを作成する。作成だけは楽観的フェーズを持たず、
// サーバーが確定したレコードを先頭に挿入する。
func (s *TaskStore) Create(ctx context.Context, fields map[string]any) error {
	created, err := s.api.CreateTask(ctx, fields)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastState = StateRolledBack
		s.notifyLocked()
		return err
	}
	s.tasks = append([]Task{*created}, s.tasks...)
	s.lastState = StateConfirmed
	s.notifyLocked()
	return nil
}

// Toggle はタスクの完了状態を楽観的に反転する。
// サーバー拒否時は変更前の値に正確に巻き戻す。
func (s *TaskStore) Toggle(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("task %s not found in local store", id)
	}
	previous := s.tasks[idx]
	s.tasks[idx].Completed = !previous.Completed
	s.lastState = StateApplied
	s.notifyLocked()
	s.mu.Unlock()

	updated, err := s.api.UpdateTask(ctx, id, map[string]any{"completed": !previous.Completed})
	return s.settle(id, previous, updated, err)
}

// Update はタスクを楽観的に部分更新する。
// ローカルには認識できるフィールドのみ即時反映する。
func (s *TaskStore) Update(ctx context.Context, id string, fields map[string]any) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("task %s not found in local store", id)
	}
	previous := s.tasks[idx]
	applyTaskFields(&s.tasks[idx], fields)
	s.lastState = StateApplied
	s.notifyLocked()
	s.mu.Unlock()

	updated, err := s.api.UpdateTask(ctx, id, fields)
	return s.settle(id, previous, updated, err)
}

// Delete はタスクを楽観的に削除する。巻き戻しに備えて削除したレコードを
// 保持し、サーバー拒否時は末尾に復元する（位置は保持しない）。
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("task %s not found in local store", id)
	}
	removed := s.tasks[idx]
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	s.lastState = StateApplied
	s.notifyLocked()
	s.mu.Unlock()

	err := s.api.DeleteTask(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.tasks = append(s.tasks, removed)
		s.lastState = StateRolledBack
		s.notifyLocked()
		return err
	}
	s.lastState = StateConfirmed
	s.notifyLocked()
	return nil
}

// settle は更新系操作のサーバー応答を反映する。
// 成功時はサーバーのレコードで置き換え、失敗時は変更前の値に巻き戻す。
func (s *TaskStore) settle(id string, previous Task, updated *Task, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if err != nil {
		if idx >= 0 {
			s.tasks[idx] = previous
		}
		s.lastState = StateRolledBack
		s.notifyLocked()
		return err
	}
	if idx >= 0 && updated != nil {
		s.tasks[idx] = *updated
	}
	s.lastState = StateConfirmed
	s.notifyLocked()
	return nil
}

func (s *TaskStore) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *TaskStore) snapshotLocked() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *TaskStore) notifyLocked() {
	if s.notify != nil {
		s.notify(s.snapshotLocked())
	}
}

// applyTaskFields は認識できるフィールドのみをローカルレコードへ反映する。
func applyTaskFields(t *Task, fields map[string]any) {
	if title, ok := fields["title"].(string); ok {
		t.Title = strings.TrimSpace(title)
	}
	if completed, ok := fields["completed"].(bool); ok {
		t.Completed = completed
	}
	if priority, ok := fields["priority"].(string); ok {
		t.Priority = priority
	}
	if due, present := fields["due_date"]; present {
		if str, ok := due.(string); ok {
			t.DueDate = &str
		} else if due == nil {
			t.DueDate = nil
		}
	}
}

// noteAPI はNoteStoreが必要とするクライアント操作。
type noteAPI interface {
	ListNotes(ctx context.Context) ([]Note, error)
	CreateNote(ctx context.Context, fields map[string]any) (*Note, error)
	UpdateNote(ctx context.Context, id string, fields map[string]any) (*Note, error)
	DeleteNote(ctx context.Context, id string) error
}

// NoteStore はメモのローカルコピーを保持し、楽観的更新を行う。
// 状態遷移の規則はTaskStoreと同じ。
type NoteStore struct {
	api noteAPI

	mu        sync.Mutex
	notes     []Note
	lastState MutationState
	notify    func([]Note)
}

// NewNoteStore はNoteStoreを生成する。
func NewNoteStore(api noteAPI) *NoteStore {
	return &NoteStore{api: api}
}

// SetNotify は変更通知コールバックを設定する。
func (s *NoteStore) SetNotify(fn func([]Note)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = fn
}

// Notes は現在のスナップショットのコピーを返す。
func (s *NoteStore) Notes() []Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// LastMutation は直近の更新の状態を返す。
func (s *NoteStore) LastMutation() MutationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastState
}

// Load はサーバーから一覧を取得してローカルコピーを置き換える。
func (s *NoteStore) Load(ctx context.Context) error {
	notes, err := s.api.ListNotes(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.notes = notes
	s.lastState = StateIdle
	s.notifyLocked()
	s.mu.Unlock()
	return nil
}

// Create はメモを作成する。作成だけは楽観的フェーズを持たず、
// サーバーが確定したレコードを先頭に挿入する。
func (s *NoteStore) Create(ctx context.Context, fields map[string]any) error {
	created, err := s.api.CreateNote(ctx, fields)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastState = StateRolledBack
		s.notifyLocked()
		return err
	}
	s.notes = append([]Note{*created}, s.notes...)
	s.lastState = StateConfirmed
	s.notifyLocked()
	return nil
}

// Update はメモを楽観的に部分更新する。
// サーバー拒否時は変更前の内容に巻き戻す。
func (s *NoteStore) Update(ctx context.Context, id string, fields map[string]any) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("note %s not found in local store", id)
	}
	previous := s.notes[idx]
	if content, ok := fields["content"].(string); ok {
		s.notes[idx].Content = strings.TrimSpace(content)
	}
	s.lastState = StateApplied
	s.notifyLocked()
	s.mu.Unlock()

	updated, err := s.api.UpdateNote(ctx, id, fields)

	s.mu.Lock()
	defer s.mu.Unlock()
	idx = s.indexLocked(id)
	if err != nil {
		if idx >= 0 {
			s.notes[idx] = previous
		}
		s.lastState = StateRolledBack
		s.notifyLocked()
		return err
	}
	if idx >= 0 && updated != nil {
		s.notes[idx] = *updated
	}
	s.lastState = StateConfirmed
	s.notifyLocked()
	return nil
}

// Delete はメモを楽観的に削除する。サーバー拒否時は末尾に復元する。
func (s *NoteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("note %s not found in local store", id)
	}
	removed := s.notes[idx]
	s.notes = append(s.notes[:idx], s.notes[idx+1:]...)
	s.lastState = StateApplied
	s.notifyLocked()
	s.mu.Unlock()

	err := s.api.DeleteNote(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.notes = append(s.notes, removed)
		s.lastState = StateRolledBack
		s.notifyLocked()
		return err
	}
	s.lastState = StateConfirmed
	s.notifyLocked()
	return nil
}

func (s *NoteStore) indexLocked(id string) int {
	for i := range s.notes {
		if s.notes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *NoteStore) snapshotLocked() []Note {
	out := make([]Note, len(s.notes))
	copy(out, s.notes)
	return out
}

func (s *NoteStore) notifyLocked() {
	if s.notify != nil {
		s.notify(s.snapshotLocked())
	}
}

// compile-time interface checks
var (
	_ taskAPI = (*Client)(nil)
	_ noteAPI = (*Client)(nil)
)
