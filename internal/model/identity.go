package model

// Identity は外部IDプロバイダーで解決された認証済みプリンシパルを表す。
// このシステムはIdentityを生成・変更せず、クレデンシャルの解決のみ行う。
// IDがレコード所有権の唯一の源泉となる。
type Identity struct {
	ID    string
	Email string // 表示用
}
