package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hitoshi/taskdeck/internal/model"
)

const (
	userInfoPath      = "/auth/v1/user"
	passwordTokenPath = "/auth/v1/token?grant_type=password"
	signUpPath        = "/auth/v1/signup"
)

// ProviderConfig はIDプロバイダークライアントの設定。
type ProviderConfig struct {
	// BaseURL はプロバイダーのベースURL。テストではhttptestサーバーを指す。
	BaseURL string
	// ServiceKey はサーバー側の特権キー。全リクエストのapikeyヘッダーに付与する。
	ServiceKey string
}

// Provider はHTTP経由でIDプロバイダーと通信するクライアント。
// トークン検証・サインイン・サインアップの3操作を提供する。
type Provider struct {
	config ProviderConfig
}

// NewProvider はProviderを生成する。
func NewProvider(config ProviderConfig) *Provider {
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	return &Provider{config: config}
}

// providerUser はプロバイダーが返すユーザー表現。
type providerUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// tokenResponse はパスワードサインインのレスポンス。
type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	User        providerUser `json:"user"`
}

// VerifyToken はトークンをプロバイダーに解決させアイデンティティを返す。
// プロバイダーのエラーやユーザー不在は区別せずエラーとして返す。
func (p *Provider) VerifyToken(ctx context.Context, token string) (*model.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.BaseURL+userInfoPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", p.config.ServiceKey)

	body, err := p.do(req)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}

	var user providerUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user response: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("empty user id in provider response")
	}

	return &model.Identity{ID: user.ID, Email: user.Email}, nil
}

// SignIn はメールアドレスとパスワードでサインインし、
// アクセストークンとアイデンティティを返す。
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Credentials, error) {
	body, err := p.postJSON(ctx, passwordTokenPath, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("sign in failed: %w", err)
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("empty access token in response")
	}

	return &Credentials{
		AccessToken: resp.AccessToken,
		Identity:    model.Identity{ID: resp.User.ID, Email: resp.User.Email},
	}, nil
}

// SignUp はメールアドレスとパスワードで新規ユーザーを登録する。
func (p *Provider) SignUp(ctx context.Context, email, password string) (*model.Identity, error) {
	body, err := p.postJSON(ctx, signUpPath, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("sign up failed: %w", err)
	}

	var user providerUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to parse sign up response: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("empty user id in sign up response")
	}

	return &model.Identity{ID: user.ID, Email: user.Email}, nil
}

// postJSON はJSONボディのPOSTリクエストを送信する。
func (p *Provider) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", p.config.ServiceKey)

	return p.do(req)
}

// do はリクエストを実行し、200以外をエラーとして扱う。
func (p *Provider) do(req *http.Request) ([]byte, error) {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// compile-time interface check
var _ TokenVerifier = (*Provider)(nil)
