package analyzer

import "fmt"

// AnalysisError は感情分析のモデル応答を EmotionProfile に解釈できなかったことを表します。
// 「悲しい話だった」と「分析に失敗した」を呼び出し元が区別できるよう、
// ゼロ値のプロファイルで誤魔化さずに必ずこのエラーを返すのだ。
type AnalysisError struct {
	Reason string
	Cause  error
}

func (e *AnalysisError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("感情分析に失敗しました: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("感情分析に失敗しました: %s", e.Reason)
}

func (e *AnalysisError) Unwrap() error { return e.Cause }

// GenerationError は物語生成のモデル応答を StoryArc に解釈できなかったことを表します。
// シーン数が 3〜5 の外に出た場合も、切り詰めたりせずにこのエラーで表面化させます。
type GenerationError struct {
	Reason string
	Cause  error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("物語生成に失敗しました: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("物語生成に失敗しました: %s", e.Reason)
}

func (e *GenerationError) Unwrap() error { return e.Cause }
