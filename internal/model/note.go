package model

import "time"

// Note はユーザーが所有するメモを表す。
// 所有権の不変条件はTaskと同じ。可変フィールドはContentのみ。
type Note struct {
	ID        string
	OwnerID   string
	Content   string
	CreatedAt time.Time
}

// NoteContentMaxLen はメモ本文の最大文字数（トリム後）。
const NoteContentMaxLen = 10000
