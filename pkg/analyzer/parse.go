package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shouni/journal-manga-kit/pkg/domain"
)

// stripCodeFences はAIが付けがちな Markdown のコードブロック (```json ... ```) を取り除くのだ。
func stripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// parseEmotionProfile はモデル応答を検証済みの EmotionProfile に変換します。
// 形が崩れていれば部分的に埋まった構造体を返さず、その場でエラーにします。
func parseEmotionProfile(raw string) (domain.EmotionProfile, error) {
	var profile domain.EmotionProfile
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &profile); err != nil {
		return domain.EmotionProfile{}, fmt.Errorf("JSONのパースに失敗したのだ: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return domain.EmotionProfile{}, fmt.Errorf("プロファイルの形が不正です: %w", err)
	}
	return profile, nil
}

// parseStoryArc はモデル応答を検証済みの StoryArc に変換します。
func parseStoryArc(raw string) (domain.StoryArc, error) {
	var arc domain.StoryArc
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &arc); err != nil {
		return domain.StoryArc{}, fmt.Errorf("JSONのパースに失敗したのだ: %w", err)
	}
	if err := arc.Validate(); err != nil {
		return domain.StoryArc{}, fmt.Errorf("物語構成の形が不正です: %w", err)
	}
	return arc, nil
}
