// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/taskdeck/internal/auth"
	"github.com/hitoshi/taskdeck/internal/model"
)

const bearerPrefix = "Bearer "

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	// identityContextKey は検証済みアイデンティティを格納するキー。
	identityContextKey = contextKey("identity")
	// accessTokenContextKey は生のアクセストークンを格納するキー。
	// プロバイダースコープのストア呼び出しで再利用できるよう保持する。
	accessTokenContextKey = contextKey("access_token")
	// identityRecorderContextKey はidentityRecorderを格納するキー。
	identityRecorderContextKey = contextKey("identity_recorder")
)

// identityRecorder はチェーンの深い位置で確定したユーザーIDを
// 外側のミドルウェアへ伝えるための可変ホルダー。
// r.WithContextによる派生コンテキストは外側へ遡れないため、
// ロギングミドルウェアが事前に設置しておく。
type identityRecorder struct {
	userID string
}

// NewAuthMiddleware はAuthorizationヘッダーのベアラートークンを検証し、
// アイデンティティをリクエストコンテキストに注入するミドルウェアを返す。
// ヘッダー欠落・形式不正・トークン空・検証失敗はいずれも401で拒否する。
func NewAuthMiddleware(verifier auth.TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, apiErr := extractBearerToken(r)
			if apiErr != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, apiErr)
				return
			}

			identity, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				slog.Warn("token verification failed",
					slog.String("error", err.Error()),
				)
				WriteErrorResponse(w, http.StatusUnauthorized,
					model.NewAuthRejectedError("Invalid or expired token"))
				return
			}

			ctx := ContextWithIdentity(r.Context(), identity, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewOptionalAuthMiddleware は認証を試みるが、失敗してもリクエストを
// 匿名のまま通過させるミドルウェアを返す。公開エンドポイント用。
func NewOptionalAuthMiddleware(verifier auth.TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, apiErr := extractBearerToken(r)
			if apiErr != nil {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := ContextWithIdentity(r.Context(), identity, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken はAuthorizationヘッダーからベアラートークンを取り出す。
// 拒否理由ごとに個別のメッセージを返す。
func extractBearerToken(r *http.Request) (string, *model.APIError) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", model.NewAuthRejectedError("Missing Authorization header")
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", model.NewAuthRejectedError("Invalid Authorization header format. Use: Bearer <token>")
	}
	token := header[len(bearerPrefix):]
	if token == "" {
		return "", model.NewAuthRejectedError("Missing access token")
	}
	return token, nil
}

// ContextWithIdentity はコンテキストに検証済みアイデンティティと
// 生トークンを注入する。テストでも使用する。
// 外側にidentityRecorderが設置されている場合はそこにも書き込む。
func ContextWithIdentity(ctx context.Context, identity *model.Identity, token string) context.Context {
	if rec, ok := ctx.Value(identityRecorderContextKey).(*identityRecorder); ok && identity != nil {
		rec.userID = identity.ID
	}
	ctx = context.WithValue(ctx, identityContextKey, identity)
	return context.WithValue(ctx, accessTokenContextKey, token)
}

// IdentityFromContext はリクエストコンテキストから検証済みアイデンティティを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func IdentityFromContext(ctx context.Context) (*model.Identity, error) {
	identity, ok := ctx.Value(identityContextKey).(*model.Identity)
	if !ok || identity == nil || identity.ID == "" {
		return nil, fmt.Errorf("identity not found in context")
	}
	return identity, nil
}

// UserIDFromContext はリクエストコンテキストから検証済みユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (string, error) {
	identity, err := IdentityFromContext(ctx)
	if err != nil {
		return "", err
	}
	return identity.ID, nil
}

// AccessTokenFromContext はリクエストコンテキストから生トークンを取得する。
func AccessTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenContextKey).(string)
	return token, ok && token != ""
}
