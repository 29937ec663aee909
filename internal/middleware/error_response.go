package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/taskdeck/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// successは常にfalse、errorはエラー種別のラベル、messageが詳細。
type ErrorResponseBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrorLabel はエラーコードからクライアント向けのエラー種別ラベルを返す。
func ErrorLabel(code string) string {
	switch code {
	case model.ErrCodeValidation:
		return "Validation Error"
	case model.ErrCodeUnauthorized:
		return "Unauthorized"
	case model.ErrCodeTaskNotFound, model.ErrCodeNoteNotFound:
		return "Not Found"
	case model.ErrCodeStore:
		return "Database Error"
	default:
		return "Internal Server Error"
	}
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Success: false,
		Error:   ErrorLabel(apiErr.Code),
		Message: apiErr.Message,
	})
}
