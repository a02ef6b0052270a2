package domain

import "fmt"

// シーン数の許容範囲なのだ。範囲外はパネル割りの前提が崩れるため、
// 切り詰めずにエラーとして呼び出し元へ返すのだ。
const (
	MinScenes = 3
	MaxScenes = 5
)

// Scene は物語の1場面（1コマの元になる叙述の単位）を保持します。
type Scene struct {
	Description string   `json:"description"`
	Emotion     string   `json:"emotion"`
	Dialogues   []string `json:"dialogues"`
}

// StoryArc は感情プロファイルを条件としてジャーナルから生成される物語構成です。
// Scenes の並び順は物語の進行そのものであり、下流の全工程で保存されます。
type StoryArc struct {
	Title            string  `json:"title"`
	Theme            string  `json:"theme"`
	EmotionalJourney string  `json:"emotional_journey"`
	Scenes           []Scene `json:"scenes"`
}

// Validate は StoryArc がモデル出力として成立しているかを確認するのだ。
func (a StoryArc) Validate() error {
	if a.Title == "" {
		return fmt.Errorf("title is empty")
	}
	if a.Theme == "" {
		return fmt.Errorf("theme is empty")
	}
	if a.EmotionalJourney == "" {
		return fmt.Errorf("emotional_journey is empty")
	}
	if n := len(a.Scenes); n < MinScenes || n > MaxScenes {
		return fmt.Errorf("scene count %d is out of range [%d, %d]", n, MinScenes, MaxScenes)
	}
	for i, s := range a.Scenes {
		if s.Description == "" {
			return fmt.Errorf("scenes[%d].description is empty", i)
		}
		if s.Emotion == "" {
			return fmt.Errorf("scenes[%d].emotion is empty", i)
		}
	}
	return nil
}

// RenderedScene は Scene と、その描画結果の公開URLの組です。
// 元の Scene と同じ序数位置を保ちます。
type RenderedScene struct {
	Scene    Scene  `json:"scene"`
	Index    int    `json:"index"`
	ImageURL string `json:"image_url"`
}

// Page は固定サイズのパネル群を1枚に合成した出力単位です。
// Panels は Scene の並びを連続かつ順序通りに分割したものです（末尾のみ欠けてよい）。
type Page struct {
	PageNumber int             `json:"page_number"`
	Panels     []RenderedScene `json:"panels"`
	PageURL    string          `json:"page_url"`
}
