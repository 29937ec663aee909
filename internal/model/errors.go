package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// ハンドラー層でHTTPステータスコードへマッピングされる。
type APIError struct {
	Code     string // エラーコード
	Message  string // クライアント向けメッセージ
	Category string // カテゴリ: validation, auth, not_found, store, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeTaskNotFound = "TASK_NOT_FOUND"
	ErrCodeNoteNotFound = "NOTE_NOT_FOUND"
	ErrCodeStore        = "STORE_ERROR"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// NewValidationError は入力バリデーションエラーを生成する。
// 呼び出し側が入力を修正すれば回復可能。常に400で返される。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  message,
		Category: "validation",
	}
}

// NewAuthRejectedError は認証拒否エラーを生成する。
// 新しいクレデンシャルなしには再試行できない。常に401で返される。
func NewAuthRejectedError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  message,
		Category: "auth",
	}
}

// NewTaskNotFoundError はタスク未検出エラーを生成する。
// 他ユーザー所有のレコードも存在しないレコードと区別せずこのエラーになる。
func NewTaskNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeTaskNotFound,
		Message:  "Task not found",
		Category: "not_found",
	}
}

// NewNoteNotFoundError はメモ未検出エラーを生成する。
func NewNoteNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeNoteNotFound,
		Message:  "Note not found",
		Category: "not_found",
	}
}

// NewStoreError はデータストア障害エラーを生成する。
// 詳細はサーバーログのみに記録し、クライアントには一般的なメッセージを返す。
func NewStoreError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeStore,
		Message:  message,
		Category: "store",
	}
}
