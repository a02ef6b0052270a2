package pipeline

import "fmt"

// Stage はパイプラインの線形な状態機械の1状態です。
// Start → AnalyzingEmotion → AnalyzingStory → RenderingImages → AssemblingPages → Done
// と進み、どの遷移も失敗すれば Failed(stage, cause) で終端します。
// この層での再試行はなく、分岐もありません。
type Stage string

const (
	StageStart            Stage = "start"
	StageAnalyzingEmotion Stage = "analyzing_emotion"
	StageAnalyzingStory   Stage = "analyzing_story"
	StageRenderingImages  Stage = "rendering_images"
	StageAssemblingPages  Stage = "assembling_pages"
	StageDone             Stage = "done"
)

// StageError はどのステージで実行が終端したかを運ぶ失敗です。
// Done と同じく終端状態であり、部分的な成果物は一切返りません。
type StageError struct {
	Stage Stage
	Cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("パイプラインがステージ '%s' で失敗しました: %v", e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error { return e.Cause }

// failedAt は StageError を組み立てる内部ヘルパーなのだ。
func failedAt(stage Stage, cause error) error {
	return &StageError{Stage: stage, Cause: cause}
}
