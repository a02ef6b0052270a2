package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shouni/journal-manga-kit/pkg/assembler"
	"github.com/shouni/journal-manga-kit/pkg/domain"
	"github.com/shouni/journal-manga-kit/pkg/render"
)

// NarrativeAnalyzer はジャーナル本文からプロファイルと物語構成を導く2操作です。
type NarrativeAnalyzer interface {
	AnalyzeEmotions(ctx context.Context, text string) (domain.EmotionProfile, error)
	GenerateStory(ctx context.Context, text string, profile domain.EmotionProfile) (domain.StoryArc, error)
}

// BatchRenderer は物語の全シーンを順序を保って描画します。
type BatchRenderer interface {
	RenderAll(ctx context.Context, scenes []domain.Scene, opts render.Options) ([]domain.RenderedScene, error)
}

// PageBuilder は描画済みシーンをページ画像へ合成します。
type PageBuilder interface {
	Assemble(ctx context.Context, scenes []domain.RenderedScene, panelsPerPage int, keyPrefix string) ([]domain.Page, error)
}

// Options は1回の実行に対する呼び出し側の指定です。
type Options struct {
	// EntryID はジャーナルエントリの識別子。保存キーの体系に織り込まれます。
	EntryID string
	// UserID は書き手の識別子。実行記録に残るだけで処理には影響しません。
	UserID string
	// Render は画風・サイズ・ネガティブプロンプト等の描画設定。
	Render render.Options
	// PanelsPerPage は1ページのパネル数（0なら既定値）。
	PanelsPerPage int
}

// Orchestrator はジャーナル1本の「感情 → 物語 → 画像 → ページ」を
// 1つの不可分な操作として順に実行する、この中核で唯一の外向き窓口です。
type Orchestrator struct {
	analyzer  NarrativeAnalyzer
	renderer  BatchRenderer
	assembler PageBuilder
	keyRoot   string
	idFactory func() string
	clock     func() time.Time
}

// New は Orchestrator を生成します。
func New(analyzer NarrativeAnalyzer, renderer BatchRenderer, builder PageBuilder, keyRoot string) (*Orchestrator, error) {
	if analyzer == nil {
		return nil, fmt.Errorf("analyzer is required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}
	if builder == nil {
		return nil, fmt.Errorf("assembler is required")
	}
	if keyRoot == "" {
		keyRoot = "runs"
	}

	return &Orchestrator{
		analyzer:  analyzer,
		renderer:  renderer,
		assembler: builder,
		keyRoot:   keyRoot,
		idFactory: func() string { return uuid.NewString() },
		clock:     time.Now,
	}, nil
}

// Process はジャーナル本文を1つの成果物一式に変換します。
// どのステージで失敗しても StageError で全体が失敗し、部分コミットはありません。
// 再試行はここでは行わず、各ステージ内部の小さな再試行か、呼び出し元の再実行に委ねます。
func (o *Orchestrator) Process(ctx context.Context, journalText string, opts Options) (*domain.PipelineResult, error) {
	if journalText == "" {
		return nil, failedAt(StageStart, fmt.Errorf("journal text is empty"))
	}

	runID := o.idFactory()
	keyPrefix := o.keyRoot + "/" + runID
	if opts.EntryID != "" {
		keyPrefix = o.keyRoot + "/" + opts.EntryID + "/" + runID
	}

	panelsPerPage := opts.PanelsPerPage
	if panelsPerPage < 1 {
		panelsPerPage = assembler.DefaultPanelsPerPage
	}

	started := o.clock()
	slog.Info("パイプラインを開始するのだ", "run_id", runID, "entry_id", opts.EntryID, "chars", len(journalText))

	// Stage: AnalyzingEmotion
	profile, err := o.analyzer.AnalyzeEmotions(ctx, journalText)
	if err != nil {
		return nil, failedAt(StageAnalyzingEmotion, err)
	}

	// Stage: AnalyzingStory
	arc, err := o.analyzer.GenerateStory(ctx, journalText, profile)
	if err != nil {
		return nil, failedAt(StageAnalyzingStory, err)
	}

	// Stage: RenderingImages
	renderOpts := opts.Render
	renderOpts.KeyPrefix = keyPrefix + "/scenes"
	rendered, err := o.renderer.RenderAll(ctx, arc.Scenes, renderOpts)
	if err != nil {
		return nil, failedAt(StageRenderingImages, err)
	}

	// Stage: AssemblingPages
	pages, err := o.assembler.Assemble(ctx, rendered, panelsPerPage, keyPrefix+"/pages")
	if err != nil {
		return nil, failedAt(StageAssemblingPages, err)
	}

	// Stage: Done
	result := &domain.PipelineResult{
		RunID:          runID,
		Entry:          domain.JournalEntry{ID: opts.EntryID, UserID: opts.UserID, Text: journalText},
		EmotionProfile: profile,
		StoryArc:       arc,
		RenderedScenes: rendered,
		Pages:          pages,
		CompletedAt:    o.clock(),
	}
	slog.Info("パイプラインが完了したのだ",
		"run_id", runID,
		"scenes", len(rendered),
		"pages", len(pages),
		"elapsed", o.clock().Sub(started))

	return result, nil
}
