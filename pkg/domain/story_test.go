package domain

import (
	"strings"
	"testing"
)

func validArc() StoryArc {
	return StoryArc{
		Title:            "新しい友だち",
		Theme:            "friendship",
		EmotionalJourney: "緊張から喜びへ",
		Scenes: []Scene{
			{Description: "教室で出会う", Emotion: "nervous"},
			{Description: "一緒に遊ぶ", Emotion: "happy"},
			{Description: "手を振って別れる", Emotion: "happy"},
		},
	}
}

func TestStoryArc_Validate(t *testing.T) {
	t.Run("完全な構成案は検証を通ること", func(t *testing.T) {
		if err := validArc().Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("必須フィールドが欠けると検証に失敗すること", func(t *testing.T) {
		cases := map[string]struct {
			mutate func(*StoryArc)
			want   string
		}{
			"タイトルなし":       {func(a *StoryArc) { a.Title = "" }, "title"},
			"テーマなし":        {func(a *StoryArc) { a.Theme = "" }, "theme"},
			"感情の流れなし":      {func(a *StoryArc) { a.EmotionalJourney = "" }, "emotional_journey"},
			"シーンの記述なし":     {func(a *StoryArc) { a.Scenes[1].Description = "" }, "description"},
			"シーンの感情なし":     {func(a *StoryArc) { a.Scenes[2].Emotion = "" }, "emotion"},
			"シーン不足(2)":     {func(a *StoryArc) { a.Scenes = a.Scenes[:2] }, "out of range"},
			"シーン過多(6)":     {func(a *StoryArc) { a.Scenes = append(a.Scenes, a.Scenes[0], a.Scenes[0], a.Scenes[0]) }, "out of range"},
		}

		for name, tc := range cases {
			t.Run(name, func(t *testing.T) {
				arc := validArc()
				tc.mutate(&arc)

				err := arc.Validate()
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !strings.Contains(err.Error(), tc.want) {
					t.Errorf("expected error mentioning %q, got %v", tc.want, err)
				}
			})
		}
	})
}
