package prompt

import (
	_ "embed"
	"fmt"

	"github.com/shouni/journal-manga-kit/pkg/analyzer"
	"github.com/shouni/journal-manga-kit/pkg/promptstore"
)

// SeedAuthor は組み込みテンプレートの作成者として記録される名前なのだ。
const SeedAuthor = "system"

//go:embed journal_analysis.md
var JournalAnalysisPrompt string

//go:embed story_generation.md
var StoryGenerationPrompt string

// seedTemplate は組み込みテンプレート1件分の定義なのだ。
type seedTemplate struct {
	name        string
	description string
	text        string
	variables   []string
}

// defaultTemplates はストアが空のときに投入される初期セットなのだ。
var defaultTemplates = []seedTemplate{
	{
		name:        analyzer.TemplateJournalAnalysis,
		description: "ジャーナル本文から感情プロファイルを抽出するプロンプト",
		text:        JournalAnalysisPrompt,
		variables:   []string{analyzer.VarJournalText},
	},
	{
		name:        analyzer.TemplateStoryGeneration,
		description: "ジャーナルと感情プロファイルから3〜5シーンの物語を構成するプロンプト",
		text:        StoryGenerationPrompt,
		variables:   []string{analyzer.VarJournalText, analyzer.VarEmotionProfile},
	},
}

// Seed は組み込みテンプレートをストアへ投入するのだ。
// すでに同名のテンプレートがある場合は上書きせず、運用側の編集を尊重する。
func Seed(store *promptstore.Store) error {
	for _, tpl := range defaultTemplates {
		if store.Has(tpl.name) {
			continue
		}
		if _, err := store.Create(tpl.name, tpl.description, tpl.text, tpl.variables, SeedAuthor); err != nil {
			return fmt.Errorf("テンプレート '%s' の初期投入に失敗しました: %w", tpl.name, err)
		}
	}
	return nil
}
