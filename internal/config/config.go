package config

import (
	"time"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultModel         = "gemini-3-flash-preview"
	DefaultImageModel    = "gemini-3-pro-image-preview"
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultConcurrency   = 3
	DefaultPanelsPerPage = 3
	DefaultRateInterval  = 10 * time.Second
	DefaultStyle         = "manga"
	DefaultSize          = "landscape"
	DefaultQuality       = "standard"
	DefaultOutputDir     = "output/stories" // 成果物（実行記録JSON）のデフォルト保存先なのだ
	DefaultImageDir      = "output/images"  // シーン/ページ画像のデフォルト保存先なのだ
	DefaultKeyRoot       = "runs"           // シーン/ページ画像のオブジェクトキーのルートなのだ
)

// Config はアプリケーション全体の環境設定（APIキーやクラウド設定）を保持する構造体なのだ。
type Config struct {
	ProjectID        string
	LocationID       string
	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string
	PublicBaseURL    string // 画像配信のベースURL（gs:// バケットの公開エンドポイント等）

	Options GenerateOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	cfg := &Config{
		ProjectID:        envutil.GetEnv("PROJECT_ID", ""),
		LocationID:       envutil.GetEnv("REGION", ""),
		GeminiAPIKey:     envutil.GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:      envutil.GetEnv("GEMINI_MODEL", DefaultModel),
		GeminiImageModel: envutil.GetEnv("IMAGE_GEMINI_MODEL", DefaultImageModel),
		PublicBaseURL:    envutil.GetEnv("PUBLIC_BASE_URL", ""),
	}
	return cfg
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// ソース入力関連
	JournalFile string // --journal-file: ジャーナルのパス（'-'で標準入力）
	EntryID     string // --entry-id
	UserID      string // --user-id
	OutputDir   string // --output-dir: 実行記録JSONと画像の保存先
	ImageDir    string // --image-dir: 画像オブジェクトの保存先（ローカル or gs://...）

	// 描画設定
	Style          string // --style: manga / anime / realistic
	Size           string // --size: square / portrait / landscape
	Quality        string // --quality
	NegativePrompt string // --negative-prompt
	FontFile       string // --font-file: セリフ描画用フォント（空なら内蔵フォント）

	// AI挙動設定
	AIModel    string // --model: テキスト生成用のGeminiモデル
	ImageModel string // --image-model: 画像生成用のGeminiモデル

	// 実行制御
	Concurrency   int           // --concurrency: 同時に描画するシーン数
	PanelsPerPage int           // --panels-per-page
	RateInterval  time.Duration // --rate-interval: 画像APIの呼び出し間隔
	HTTPTimeout   time.Duration // --http-timeout
}
