// Package handler はHTTPハンドラーを提供する。
// すべてのレスポンスは統一エンベロープ（success＋data/message/error）で返す。
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hitoshi/taskdeck/internal/middleware"
	"github.com/hitoshi/taskdeck/internal/model"
)

// taskResponse はタスクのAPI表現。
type taskResponse struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	Title     string  `json:"title"`
	Completed bool    `json:"completed"`
	DueDate   *string `json:"due_date"`
	Priority  string  `json:"priority"`
	CreatedAt string  `json:"created_at"`
}

// noteResponse はメモのAPI表現。
type noteResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// toTaskResponse はドメインモデルをAPI表現に変換する。
// 期日は日付のみ（YYYY-MM-DD）、未設定はnullで返す。
func toTaskResponse(t *model.Task) taskResponse {
	resp := taskResponse{
		ID:        t.ID,
		UserID:    t.OwnerID,
		Title:     t.Title,
		Completed: t.Completed,
		Priority:  string(t.Priority),
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
	}
	if t.DueDate != nil {
		due := t.DueDate.Format("2006-01-02")
		resp.DueDate = &due
	}
	return resp
}

// toTaskResponses はタスクのスライスを変換する。0件は空スライスを返す。
func toTaskResponses(tasks []model.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskResponse(&tasks[i]))
	}
	return out
}

// toNoteResponse はドメインモデルをAPI表現に変換する。
func toNoteResponse(n *model.Note) noteResponse {
	return noteResponse{
		ID:        n.ID,
		UserID:    n.OwnerID,
		Content:   n.Content,
		CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// toNoteResponses はメモのスライスを変換する。0件は空スライスを返す。
func toNoteResponses(notes []model.Note) []noteResponse {
	out := make([]noteResponse, 0, len(notes))
	for i := range notes {
		out = append(out, toNoteResponse(&notes[i]))
	}
	return out
}

// successBody は成功レスポンスの統一エンベロープ。
type successBody struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeData はデータ付き成功レスポンスを返す。
func writeData(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, successBody{Success: true, Data: data})
}

// writeDataWithCount は件数付きの一覧レスポンスを返す。
func writeDataWithCount(w http.ResponseWriter, data any, count int) {
	writeJSON(w, http.StatusOK, successBody{Success: true, Data: data, Count: &count})
}

// writeDataWithMessage はデータとメッセージ付きの成功レスポンスを返す。
func writeDataWithMessage(w http.ResponseWriter, statusCode int, data any, message string) {
	writeJSON(w, statusCode, successBody{Success: true, Data: data, Message: message})
}

// writeMessage はメッセージのみの成功レスポンスを返す。
func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, successBody{Success: true, Message: message})
}

// decodeBody はリクエストボディをフィールドセットとしてデコードする。
// 不正なJSONやサイズ超過はバリデーションエラーになる。
func decodeBody(r *http.Request) (map[string]any, *model.APIError) {
	var input map[string]any
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		return nil, model.NewValidationError("Invalid JSON in request body")
	}
	return input, nil
}

// statusForError はAPIエラーのカテゴリをHTTPステータスコードへマッピングする。
func statusForError(apiErr *model.APIError) int {
	switch apiErr.Category {
	case "validation":
		return http.StatusBadRequest
	case "auth":
		return http.StatusUnauthorized
	case "not_found":
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError はサービス層のエラーを統一エラーフォーマットで書き込む。
// APIエラー以外は詳細を伏せて500で返す。
func writeError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		apiErr = &model.APIError{
			Code:     model.ErrCodeInternal,
			Message:  "Internal Server Error",
			Category: "system",
		}
	}
	middleware.WriteErrorResponse(w, statusForError(apiErr), apiErr)
}
