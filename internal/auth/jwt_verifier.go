package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/taskdeck/internal/model"
)

// jwtClaims はプロバイダー発行トークンのクレーム。
// subがユーザーID、emailが表示用メールアドレス。
type jwtClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTVerifier はプロバイダーのJWT署名鍵を使ってトークンを
// ネットワーク往復なしでローカル検証する。
// プロバイダーがHS256で署名する運用（共有シークレットが配布できる環境）向け。
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier はJWTVerifierを生成する。
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// VerifyToken は署名と有効期限を検証し、subクレームをアイデンティティとして返す。
func (v *JWTVerifier) VerifyToken(ctx context.Context, token string) (*model.Identity, error) {
	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("missing sub claim")
	}

	return &model.Identity{ID: claims.Subject, Email: claims.Email}, nil
}

// compile-time interface check
var _ TokenVerifier = (*JWTVerifier)(nil)
