package domain

import "time"

// JournalEntry は周辺システム（ジャーナルサブシステム）から渡される処理単位です。
type JournalEntry struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// PipelineResult はパイプライン1回分の成果物一式です。
// 成功した実行ごとに一度だけ生成され、以後変更されません。永続化は呼び出し元の責務です。
type PipelineResult struct {
	RunID          string          `json:"run_id"`
	Entry          JournalEntry    `json:"entry"`
	EmotionProfile EmotionProfile  `json:"emotion_profile"`
	StoryArc       StoryArc        `json:"story_arc"`
	RenderedScenes []RenderedScene `json:"rendered_scenes"`
	Pages          []Page          `json:"pages"`
	CompletedAt    time.Time       `json:"completed_at"`
}
