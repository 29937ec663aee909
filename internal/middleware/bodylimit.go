package middleware

import "net/http"

// DefaultMaxBodyBytes はリクエストボディの上限（10KB）。
const DefaultMaxBodyBytes = 10 * 1024

// NewBodyLimitMiddleware はリクエストボディの読み取りをmaxBytesで打ち切る
// ミドルウェアを返す。超過時はボディのデコードがエラーになり、
// ハンドラー側でバリデーションエラーとして扱われる。
func NewBodyLimitMiddleware(maxBytes int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
