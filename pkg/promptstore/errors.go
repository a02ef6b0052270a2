package promptstore

import (
	"errors"
	"fmt"
)

// ErrNotFound は、指定された名前のアクティブなテンプレートが存在しない場合に返されます。
var ErrNotFound = errors.New("prompt template not found")

// ValidationError はテンプレート本文と変数宣言の不整合を表します。
// 未宣言の変数参照と、参照されない宣言済み変数のどちらも保存時点で拒否するのだ。
type ValidationError struct {
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("テンプレート '%s' の検証に失敗しました: %s", e.Name, e.Reason)
}

// MissingVariableError は展開時に宣言済み変数へ値が渡されなかったことを表します。
type MissingVariableError struct {
	Name     string
	Variable string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("テンプレート '%s' の変数 '%s' に値が渡されていません", e.Name, e.Variable)
}

// UnresolvedTokenError は展開結果に {{…}} トークンが残っていたことを表します。
type UnresolvedTokenError struct {
	Name  string
	Token string
}

func (e *UnresolvedTokenError) Error() string {
	return fmt.Sprintf("テンプレート '%s' の展開結果に未解決トークン '%s' が残っています", e.Name, e.Token)
}

// ConflictError は楽観ロックの検査に失敗した並行更新を表します。
// 呼び出し元は最新バージョンを取得し直してから再試行する必要があります。
type ConflictError struct {
	Name            string
	ExpectedVersion int
	CurrentVersion  int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("テンプレート '%s' は並行更新されています (expected=%d, current=%d)",
		e.Name, e.ExpectedVersion, e.CurrentVersion)
}
