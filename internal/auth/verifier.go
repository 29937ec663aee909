// Package auth は外部IDプロバイダーとの連携を提供する。
// クレデンシャルの発行・失効ライフサイクルは全面的にプロバイダーへ委譲し、
// このパッケージは「トークン→アイデンティティ」の解決のみ担う。
package auth

import (
	"context"

	"github.com/hitoshi/taskdeck/internal/model"
)

// TokenVerifier はベアラートークンを検証しアイデンティティを解決する。
// 検証失敗（署名不正・期限切れ・未知のユーザー）はエラーとして返され、
// 呼び出し側で一律に認証拒否として扱われる。
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*model.Identity, error)
}

// Credentials はサインイン成功時にプロバイダーが発行するクレデンシャル。
type Credentials struct {
	AccessToken string
	Identity    model.Identity
}
