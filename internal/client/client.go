// Package client はAPIサーバーへのクライアントデータレイヤーを提供する。
// HTTPクライアントと、楽観的更新を行うローカルストアで構成される。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// requestTimeout はAPIリクエストのタイムアウト。
const requestTimeout = 10 * time.Second

// Task はAPIが返すタスク表現。
type Task struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	Title     string  `json:"title"`
	Completed bool    `json:"completed"`
	DueDate   *string `json:"due_date"`
	Priority  string  `json:"priority"`
	CreatedAt string  `json:"created_at"`
}

// Note はAPIが返すメモ表現。
type Note struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// TokenSource はリクエストに付与するアクセストークンを提供する。
type TokenSource interface {
	Token() (string, error)
}

// StaticToken は固定トークンのTokenSource実装。
type StaticToken string

// Token は固定トークンを返す。
func (s StaticToken) Token() (string, error) {
	return string(s), nil
}

// RequestError はAPIが返したエラーレスポンスを表す。
type RequestError struct {
	StatusCode int
	Label      string // エラー種別（Validation Error等）
	Message    string
}

// Error はerrorインターフェースを実装する。
func (e *RequestError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Label, e.Message)
}

// envelope はAPIの統一レスポンスフォーマット。
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Count   *int            `json:"count"`
}

// Client はAPIサーバーと通信するHTTPクライアント。
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokenSource TokenSource
}

// New はClientを生成する。
func New(baseURL string, tokenSource TokenSource) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		httpClient:  &http.Client{Timeout: requestTimeout},
		tokenSource: tokenSource,
	}
}

// do はリクエストを実行し、成功エンベロープのdataをoutにデコードする。
// エラーレスポンスは*RequestErrorとして返す。
func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokenSource != nil {
		token, err := c.tokenSource.Token()
		if err != nil {
			return fmt.Errorf("failed to obtain access token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		return &RequestError{
			StatusCode: resp.StatusCode,
			Label:      env.Error,
			Message:    env.Message,
		}
	}

	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to parse response data: %w", err)
		}
	}
	return nil
}

// ListTasks はタスク一覧を取得する。
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask はタスクを作成する。
func (c *Client) CreateTask(ctx context.Context, fields map[string]any) (*Task, error) {
	var t Task
	if err := c.do(ctx, http.MethodPost, "/tasks", fields, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTask はタスクを部分更新する。
func (c *Client) UpdateTask(ctx context.Context, id string, fields map[string]any) (*Task, error) {
	var t Task
	if err := c.do(ctx, http.MethodPatch, "/tasks/"+id, fields, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTask はタスクを削除する。
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, nil)
}

// ListNotes はメモ一覧を取得する。
func (c *Client) ListNotes(ctx context.Context) ([]Note, error) {
	var notes []Note
	if err := c.do(ctx, http.MethodGet, "/notes", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// CreateNote はメモを作成する。
func (c *Client) CreateNote(ctx context.Context, fields map[string]any) (*Note, error) {
	var n Note
	if err := c.do(ctx, http.MethodPost, "/notes", fields, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// UpdateNote はメモを部分更新する。
func (c *Client) UpdateNote(ctx context.Context, id string, fields map[string]any) (*Note, error) {
	var n Note
	if err := c.do(ctx, http.MethodPatch, "/notes/"+id, fields, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// DeleteNote はメモを削除する。
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/notes/"+id, nil, nil)
}
