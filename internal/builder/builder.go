package builder

import (
	"context"
	"fmt"
	"time"

	"github.com/shouni/journal-manga-kit/internal/config"
	"github.com/shouni/journal-manga-kit/pkg/analyzer"
	"github.com/shouni/journal-manga-kit/pkg/assembler"
	"github.com/shouni/journal-manga-kit/pkg/pipeline"
	"github.com/shouni/journal-manga-kit/pkg/render"
	"github.com/shouni/journal-manga-kit/pkg/storage"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/gemini-image-kit/pkg/generator"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// InitializeAIClient は gemini クライアントを初期化します。
func InitializeAIClient(ctx context.Context, apiKey string) (gemini.GenerativeModel, error) {
	const defaultGeminiTemperature = float32(0.2)
	clientConfig := gemini.Config{
		APIKey:      apiKey,
		Temperature: genai.Ptr(defaultGeminiTemperature),
	}
	aiClient, err := gemini.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}

// InitializeImageGenerator は ImageGeneratorを初期化します。
func InitializeImageGenerator(appCtx *AppContext) (generator.ImageGenerator, error) {
	imgCache := cache.New(30*time.Minute, 1*time.Hour)
	cacheTTL := 1 * time.Hour

	core, err := generator.NewGeminiImageCore(appCtx.aiClient, appCtx.Reader, appCtx.httpClient, imgCache, cacheTTL)
	if err != nil {
		return nil, fmt.Errorf("GeminiImageCoreの初期化に失敗したのだ: %w", err)
	}

	imgGen, err := generator.NewGeminiGenerator(core, appCtx.aiClient, appCtx.Config.GeminiImageModel)
	if err != nil {
		return nil, fmt.Errorf("GeminiGeneratorの初期化に失敗したのだ: %w", err)
	}

	return imgGen, nil
}

// InitializeUploader は画像オブジェクトの保存先を初期化します。
func InitializeUploader(appCtx *AppContext) (storage.Uploader, error) {
	uploader, err := storage.NewRemoteUploader(appCtx.Writer, appCtx.Options.ImageDir, appCtx.Config.PublicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("アップローダーの初期化に失敗しました: %w", err)
	}
	return uploader, nil
}

// BuildAnalyzer はジャーナル分析と物語生成を担当する Analyzer を構築します。
func BuildAnalyzer(appCtx *AppContext) (*analyzer.Analyzer, error) {
	return analyzer.New(appCtx.aiClient, appCtx.Templates, appCtx.Config.GeminiModel)
}

// BuildBatchRenderer はシーン画像の並列描画を担当する BatchGenerator を構築します。
func BuildBatchRenderer(appCtx *AppContext) (*render.BatchGenerator, error) {
	imgGen, err := InitializeImageGenerator(appCtx)
	if err != nil {
		return nil, err
	}

	uploader, err := InitializeUploader(appCtx)
	if err != nil {
		return nil, err
	}

	renderer, err := render.NewSceneRenderer(imgGen, uploader)
	if err != nil {
		return nil, fmt.Errorf("シーンレンダラーの初期化に失敗したのだ: %w", err)
	}

	var opts []render.BatchOption
	if appCtx.Options.Concurrency > 0 {
		opts = append(opts, render.WithConcurrency(appCtx.Options.Concurrency))
	}
	if appCtx.Options.RateInterval > 0 {
		opts = append(opts, render.WithRateInterval(appCtx.Options.RateInterval))
	}
	return render.NewBatchGenerator(renderer, opts...)
}

// BuildAssembler はページ合成を担当する PageAssembler を構築します。
func BuildAssembler(appCtx *AppContext) (*assembler.PageAssembler, error) {
	uploader, err := InitializeUploader(appCtx)
	if err != nil {
		return nil, err
	}

	var opts []assembler.AssemblerOption
	if appCtx.Options.FontFile != "" {
		opts = append(opts, assembler.WithFontFile(appCtx.Options.FontFile, 24))
	}
	return assembler.New(appCtx.httpClient, uploader, opts...)
}

// BuildOrchestrator はパイプライン全体を束ねる Orchestrator を構築します。
func BuildOrchestrator(appCtx *AppContext) (*pipeline.Orchestrator, error) {
	a, err := BuildAnalyzer(appCtx)
	if err != nil {
		return nil, fmt.Errorf("アナライザーの構築に失敗したのだ: %w", err)
	}

	renderer, err := BuildBatchRenderer(appCtx)
	if err != nil {
		return nil, fmt.Errorf("バッチレンダラーの構築に失敗したのだ: %w", err)
	}

	asm, err := BuildAssembler(appCtx)
	if err != nil {
		return nil, fmt.Errorf("アセンブラーの構築に失敗したのだ: %w", err)
	}

	return pipeline.New(a, renderer, asm, config.DefaultKeyRoot)
}
