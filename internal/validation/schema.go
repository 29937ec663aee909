// Package validation はリクエストボディの宣言的バリデーションを提供する。
// リソースごとにフィールド定義（型＋制約のリスト）を1つ持ち、
// 評価結果として正規化済みフィールドセットと失敗メッセージのリストを返す。
package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// FieldType はフィールドの型種別を表す。
type FieldType int

const (
	// TypeString はトリム対象の文字列フィールド。
	TypeString FieldType = iota
	// TypeBool は真偽値フィールド。JSの真偽値変換と同等の緩い強制を行う。
	TypeBool
	// TypeDate は日付フィールド。日付のみに正規化され、nullでクリアできる。
	TypeDate
	// TypeEnum は列挙フィールド。Enumリストのいずれかのみ受け付ける。
	TypeEnum
)

// Field は1フィールドの宣言的な定義。
type Field struct {
	Name     string    // JSONキー
	Label    string    // エラーメッセージ用の表示名
	Type     FieldType
	Required bool     // 作成時に必須かどうか
	MaxLen   int      // トリム後の最大文字数（0は無制限）
	Enum     []string // TypeEnumの許容値
	Default  any      // 作成時にフィールドが無い場合の値
}

// Schema はリソース1種のフィールド定義一式。
type Schema struct {
	Fields []Field
}

// dateFormats は受け付ける日付表現。正規化後は日付のみ保持する。
var dateFormats = []string{"2006-01-02", time.RFC3339}

// ValidateCreate は作成入力を検証し、正規化済みフィールドセットと
// 失敗メッセージのリストを返す。未指定の任意フィールドにはデフォルト値を適用する。
func (s Schema) ValidateCreate(input map[string]any) (map[string]any, []string) {
	fields := make(map[string]any)
	var failures []string

	for _, f := range s.Fields {
		value, present := input[f.Name]

		if !present || value == nil {
			if f.Required {
				failures = append(failures, fmt.Sprintf("%s is required and must be a string", f.Label))
				continue
			}
			if f.Default != nil || f.Type == TypeDate {
				fields[f.Name] = f.Default
			}
			continue
		}

		normalized, failure := f.normalize(value, false)
		if failure != "" {
			failures = append(failures, failure)
			continue
		}
		fields[f.Name] = normalized
	}

	return fields, failures
}

// ValidateUpdate は部分更新入力を検証する。定義済みかつ入力に存在する
// フィールドのみが結果に含まれ、それ以外は無視される。
// 認識できるフィールドが1つも無い場合は空のフィールドセットを返す
// （「更新対象なし」の扱いは呼び出し側が決める）。
func (s Schema) ValidateUpdate(input map[string]any) (map[string]any, []string) {
	fields := make(map[string]any)
	var failures []string

	for _, f := range s.Fields {
		value, present := input[f.Name]
		if !present {
			continue
		}

		// nullは日付のクリアとして有効。真偽値はfalseに強制される
		if value == nil {
			switch f.Type {
			case TypeDate:
				fields[f.Name] = (*time.Time)(nil)
			case TypeBool:
				fields[f.Name] = false
			default:
				failures = append(failures, f.typeFailure(true))
			}
			continue
		}

		normalized, failure := f.normalize(value, true)
		if failure != "" {
			failures = append(failures, failure)
			continue
		}
		fields[f.Name] = normalized
	}

	return fields, failures
}

// normalize は1フィールドの値を検証し正規化する。
// 失敗時は空でないメッセージを返す。
func (f Field) normalize(value any, isUpdate bool) (any, string) {
	switch f.Type {
	case TypeString:
		str, ok := value.(string)
		if !ok {
			return nil, f.typeFailure(isUpdate)
		}
		trimmed := strings.TrimSpace(str)
		if trimmed == "" {
			return nil, fmt.Sprintf("%s cannot be empty", f.Label)
		}
		if f.MaxLen > 0 && utf8.RuneCountInString(trimmed) > f.MaxLen {
			return nil, fmt.Sprintf("%s must be less than %d characters", f.Label, f.MaxLen)
		}
		return trimmed, ""

	case TypeBool:
		return coerceBool(value), ""

	case TypeDate:
		str, ok := value.(string)
		if !ok {
			return nil, f.dateFailure()
		}
		for _, layout := range dateFormats {
			if t, err := time.Parse(layout, str); err == nil {
				// 日付のみに正規化する
				normalized := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
				return &normalized, ""
			}
		}
		return nil, f.dateFailure()

	case TypeEnum:
		str, ok := value.(string)
		if !ok {
			return nil, f.enumFailure()
		}
		for _, allowed := range f.Enum {
			if str == allowed {
				return str, ""
			}
		}
		return nil, f.enumFailure()

	default:
		return nil, fmt.Sprintf("%s has an unsupported type", f.Label)
	}
}

// typeFailure はフィールドの型に応じた失敗メッセージを返す。
func (f Field) typeFailure(isUpdate bool) string {
	switch f.Type {
	case TypeDate:
		return f.dateFailure()
	case TypeEnum:
		return f.enumFailure()
	}
	if isUpdate {
		return fmt.Sprintf("%s must be a string", f.Label)
	}
	return fmt.Sprintf("%s is required and must be a string", f.Label)
}

func (f Field) dateFailure() string {
	return fmt.Sprintf("%s must be a valid date (YYYY-MM-DD)", f.Label)
}

func (f Field) enumFailure() string {
	return fmt.Sprintf("%s must be one of: %s", f.Label, strings.Join(f.Enum, ", "))
}

// coerceBool はJSのBoolean()と同等の緩い真偽値変換を行う。
// false、0、空文字列のみがfalseになる。
func coerceBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	default:
		return true
	}
}
