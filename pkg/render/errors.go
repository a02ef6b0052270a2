package render

import "fmt"

// RenderError は1シーン分の描画失敗を表します。
// どのシーンで落ちたかを呼び出し元が判断できるよう序数位置を添えるのだ。
type RenderError struct {
	SceneIndex int
	Reason     string
	Cause      error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("シーン %d の描画に失敗しました: %s: %v", e.SceneIndex+1, e.Reason, e.Cause)
	}
	return fmt.Sprintf("シーン %d の描画に失敗しました: %s", e.SceneIndex+1, e.Reason)
}

func (e *RenderError) Unwrap() error { return e.Cause }
