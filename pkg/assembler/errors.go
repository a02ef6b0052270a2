package assembler

import "fmt"

// AssemblyError はページ合成の失敗を表します。どのページで落ちたかを序数で添えます。
type AssemblyError struct {
	PageNumber int
	Reason     string
	Cause      error
}

func (e *AssemblyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ページ %d の合成に失敗しました: %s: %v", e.PageNumber, e.Reason, e.Cause)
	}
	return fmt.Sprintf("ページ %d の合成に失敗しました: %s", e.PageNumber, e.Reason)
}

func (e *AssemblyError) Unwrap() error { return e.Cause }
