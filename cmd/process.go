package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/shouni/journal-manga-kit/internal/config"
	"github.com/shouni/journal-manga-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// processCmd は、ジャーナル1件を絵物語へ変換する本体コマンドなのだ。
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "ジャーナルを解析して挿絵つきの物語を生成するのだ。",
	Long: `ジャーナル本文を読み込み、感情分析、物語構成、シーン画像の生成、
ページ合成までを一気に実行するのだ。出力は実行記録（JSON）と画像ファイルになるのだよ。`,
	RunE: processCommand,
}

func processCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. 必須チェック
	if opts.JournalFile == "" && !isStdin() {
		return fmt.Errorf("ジャーナル（--journal-file）を指定してほしいのだ")
	}
	if opts.JournalFile == "" {
		opts.JournalFile = "-"
	}

	// 2. 環境変数等から基本設定をロードするのだ
	cfg := config.LoadConfig()
	cfg.GeminiModel = opts.AIModel
	cfg.GeminiImageModel = opts.ImageModel
	cfg.Options = opts

	slog.Info("絵物語パイプラインを起動するのだ！",
		"style", opts.Style,
		"text_model", cfg.GeminiModel,
		"image_model", cfg.GeminiImageModel,
		"output", opts.OutputDir)

	// 3. 更新した config を考慮しつつパイプラインを実行するのだ
	if err := pipeline.Execute(ctx, cfg); err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("すべての生成工程が完了したのだ！")
	return nil
}

func isStdin() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
