package cmd

import (
	"fmt"
	"os"

	"github.com/shouni/journal-manga-kit/internal/config"

	"github.com/spf13/cobra"
)

// opts は各サブコマンドで共有される実行時パラメータなのだ。
var opts config.GenerateOptions

// rootCmd はアプリケーションのトップレベルコマンドなのだ。
var rootCmd = &cobra.Command{
	Use:               "journal-manga-kit",
	Short:             "子どものジャーナルを挿絵つきの物語へ変換するツールなのだ。",
	PersistentPreRunE: preRunAppE,
	SilenceUsage:      true,
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- ソース入力関連 ---
	rootCmd.PersistentFlags().StringVarP(&opts.JournalFile, "journal-file", "f", "", "ジャーナル本文のパス（'-'で標準入力なのだ）。")
	rootCmd.PersistentFlags().StringVar(&opts.EntryID, "entry-id", "", "ジャーナルエントリの識別子なのだ。保存キーに織り込まれるのだよ。")
	rootCmd.PersistentFlags().StringVar(&opts.UserID, "user-id", "", "書き手の識別子なのだ。")

	// --- 生成結果の出力設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", config.DefaultOutputDir, "実行記録JSONの保存先（ローカル or gs://...）なのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.ImageDir, "image-dir", "i", config.DefaultImageDir, "生成された画像を保存するディレクトリ（ローカル or gs://...）なのだ。")

	// --- 描画設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.Style, "style", config.DefaultStyle, "挿絵の画風（manga / anime / realistic）なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.Size, "size", config.DefaultSize, "挿絵のサイズ（square / portrait / landscape）なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.Quality, "quality", config.DefaultQuality, "挿絵の品質指定なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.NegativePrompt, "negative-prompt", "", "画像生成のネガティブプロンプト（空ならデフォルト）なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.FontFile, "font-file", "", "セリフ描画に使うフォントファイルなのだ。")

	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.AIModel, "model", config.DefaultModel, "使用する Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", config.DefaultImageModel, "画像生成用の Gemini モデル名なのだ。")

	// --- 実行制御 ---
	rootCmd.PersistentFlags().IntVar(&opts.Concurrency, "concurrency", config.DefaultConcurrency, "同時に描画するシーン数の上限なのだ。")
	rootCmd.PersistentFlags().IntVar(&opts.PanelsPerPage, "panels-per-page", config.DefaultPanelsPerPage, "1ページに載せるパネル数なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.RateInterval, "rate-interval", config.DefaultRateInterval, "画像APIの呼び出し間隔なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.HTTPTimeout, "http-timeout", config.DefaultHTTPTimeout, "Webリクエストのタイムアウトなのだ。")
}

// preRunAppE は、コマンド実行前に環境変数などの必須チェックを行うのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	// テンプレート閲覧系のコマンドはAPIキーなしでも動くのだ
	if cmd.Name() == "list" || cmd.Name() == "show" || cmd.Name() == "history" {
		return nil
	}

	// Gemini APIを利用するため、APIキーの存在チェックは欠かせないのだ！
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}

	return nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(processCmd, templateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
