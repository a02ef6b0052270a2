package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/journal-manga-kit/internal/builder"
	"github.com/shouni/journal-manga-kit/internal/config"
	"github.com/shouni/journal-manga-kit/internal/prompt"
	"github.com/shouni/journal-manga-kit/internal/runner"
	"github.com/shouni/journal-manga-kit/pkg/promptstore"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
)

// Execute は、ジャーナル1件を読み込み、感情分析から絵物語の完成までを一気に実行するのだ。
func Execute(ctx context.Context, cfg *config.Config) error {
	appCtx, err := setupAppContext(ctx, cfg)
	if err != nil {
		return err
	}

	orch, err := builder.BuildOrchestrator(appCtx)
	if err != nil {
		return fmt.Errorf("オーケストレーターの構築に失敗したのだ: %w", err)
	}

	journalRunner := runner.NewDefaultJournalRunner(cfg.Options, orch, appCtx.Reader, appCtx.Writer)

	result, err := journalRunner.Run(ctx)
	if err != nil {
		return err
	}

	slog.Info("絵物語が完成したのだ！",
		"run_id", result.RunID,
		"title", result.StoryArc.Title,
		"scenes", len(result.RenderedScenes),
		"pages", len(result.Pages))
	return nil
}

// setupAppContext は、提供された設定と共有コンポーネントを使用して、アプリケーションコンテキストを初期化して返すのだ。
// ライフサイクル管理用の context と設定オブジェクトを受け取るのだ。
// 初期化中にエラーが発生した場合は、AppContext のポインタとエラーを返すのだ。
func setupAppContext(ctx context.Context, cfg *config.Config) (*builder.AppContext, error) {
	httpTimeout := cfg.Options.HTTPTimeout
	if httpTimeout <= 0 {
		httpTimeout = config.DefaultHTTPTimeout
	}
	httpClient := httpkit.New(httpTimeout)
	aiClient, err := builder.InitializeAIClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create ai client: %w", err)
	}

	gcsFactory, err := gcsfactory.NewGCSClientFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client factory: %w", err)
	}

	reader, err := gcsFactory.NewInputReader()
	if err != nil {
		return nil, err
	}
	writer, err := gcsFactory.NewOutputWriter()
	if err != nil {
		return nil, err
	}

	// プロンプトストアを初期化して、組み込みテンプレートを投入するのだ
	templates := promptstore.NewStore()
	if err := prompt.Seed(templates); err != nil {
		return nil, err
	}

	appCtx := builder.NewAppContext(cfg, httpClient, aiClient, reader, writer, templates)
	return &appCtx, nil
}
