package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/taskdeck/internal/auth"
	"github.com/hitoshi/taskdeck/internal/model"
)

// AuthService は認証ハンドラーが必要とするサービスインターフェース。
type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*auth.Credentials, error)
	SignUp(ctx context.Context, email, password string) (*model.Identity, error)
}

// AuthHandler はサインイン・サインアップのエンドポイントを処理する。
// 実際の認証はIDプロバイダーに委譲し、このハンドラーは薄いパススルー。
type AuthHandler struct {
	service AuthService
	logger  *slog.Logger
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// credentialsInput はサインイン・サインアップの共通入力。
type credentialsInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// decodeCredentials はメールアドレスとパスワードをデコード・検証する。
func decodeCredentials(r *http.Request) (*credentialsInput, *model.APIError) {
	input, apiErr := decodeBody(r)
	if apiErr != nil {
		return nil, apiErr
	}

	creds := &credentialsInput{}
	if email, ok := input["email"].(string); ok {
		creds.Email = strings.TrimSpace(email)
	}
	if password, ok := input["password"].(string); ok {
		creds.Password = password
	}
	if creds.Email == "" || creds.Password == "" {
		return nil, model.NewValidationError("Email and password are required")
	}
	return creds, nil
}

// SignIn はPOST /auth/signinを処理する。
// 成功時はアクセストークンとユーザー情報を返す。
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	creds, apiErr := decodeCredentials(r)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	result, err := h.service.SignIn(r.Context(), creds.Email, creds.Password)
	if err != nil {
		h.logger.Warn("sign in rejected", slog.String("email", creds.Email), slog.Any("error", err))
		writeError(w, model.NewAuthRejectedError("Invalid email or password"))
		return
	}

	writeData(w, http.StatusOK, map[string]any{
		"access_token": result.AccessToken,
		"user": map[string]string{
			"id":    result.Identity.ID,
			"email": result.Identity.Email,
		},
	})
}

// SignUp はPOST /auth/signupを処理する。
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	creds, apiErr := decodeCredentials(r)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	identity, err := h.service.SignUp(r.Context(), creds.Email, creds.Password)
	if err != nil {
		h.logger.Warn("sign up rejected", slog.String("email", creds.Email), slog.Any("error", err))
		writeError(w, model.NewValidationError("Sign up failed"))
		return
	}

	writeDataWithMessage(w, http.StatusCreated, map[string]string{
		"id":    identity.ID,
		"email": identity.Email,
	}, "Sign up successful")
}
