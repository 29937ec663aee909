// Package model はドメインモデルを定義する。
package model

import "time"

// Priority はタスクの優先度を表す。
type Priority string

const (
	// PriorityLow は低優先度。
	PriorityLow Priority = "low"
	// PriorityMedium は中優先度（デフォルト）。
	PriorityMedium Priority = "medium"
	// PriorityHigh は高優先度。
	PriorityHigh Priority = "high"
)

// ValidPriorities は受け付ける優先度の一覧。バリデーションエラーの
// メッセージにもこの順序で列挙される。
var ValidPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Task はユーザーが所有するタスクを表す。
// OwnerIDは作成時に検証済みアイデンティティから一度だけ設定され、
// 以降変更されない。リクエストボディ由来の値は決して使わない。
type Task struct {
	ID        string
	OwnerID   string
	Title     string
	Completed bool
	DueDate   *time.Time // 日付のみ。未設定はnil。
	Priority  Priority
	CreatedAt time.Time
}

// TaskTitleMaxLen はタスクタイトルの最大文字数（トリム後）。
const TaskTitleMaxLen = 500
