package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/cenkalti/backoff/v4"
	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"
	"github.com/shouni/gemini-image-kit/pkg/generator"

	"github.com/shouni/journal-manga-kit/pkg/domain"
	"github.com/shouni/journal-manga-kit/pkg/storage"
)

// スタイル名と、シーン記述の前置きに使う画風フレーズの対応なのだ。
var stylePrefixes = map[string]string{
	"manga":     "Japanese manga style, clean line art, screentone shading, expressive faces",
	"anime":     "Japanese anime style, cel-shaded, vibrant colors, cinematic lighting",
	"realistic": "soft realistic illustration, warm natural light, gentle color palette",
}

// DefaultNegativePrompt は子ども向けの出力で避けたい描写の標準セットです。
const DefaultNegativePrompt = "text, letters, watermark, signature, low quality, distorted, bad anatomy, extra limbs, scary imagery, violence"

const (
	DefaultStyle       = "manga"
	defaultAspectRatio = "16:9"
	defaultCallTimeout   = 120 * time.Second
	defaultUploadTimeout = 60 * time.Second
	defaultMaxRetries    = 2
)

// sizeToAspectRatio は外向きのサイズ指定を Gemini のアスペクト比に写します。
var sizeToAspectRatio = map[string]string{
	"square":    "1:1",
	"portrait":  "3:4",
	"landscape": "16:9",
}

// Options は1回のパイプライン実行における描画の共通設定です。
type Options struct {
	Style          string // manga / anime / realistic
	Size           string // square / portrait / landscape
	Quality        string // "high" で仕上げ指示を追加
	NegativePrompt string // 空ならデフォルトを適用
	KeyPrefix      string // 保存先オブジェクトキーの前置き（実行単位で一意）
}

func (o Options) aspectRatio() string {
	if ar, ok := sizeToAspectRatio[o.Size]; ok {
		return ar
	}
	return defaultAspectRatio
}

func (o Options) negativePrompt() string {
	if o.NegativePrompt != "" {
		return o.NegativePrompt
	}
	return DefaultNegativePrompt
}

// SceneRenderer は1つのシーン記述を1枚の公開画像URLへ変換します。
// 呼び出しごとに独立で、ストレージ以外の共有状態を持ちません。
type SceneRenderer struct {
	imageGen      generator.ImageGenerator
	uploader      storage.Uploader
	callTimeout   time.Duration
	uploadTimeout time.Duration
	maxRetries    uint64
}

// RendererOption は SceneRenderer の挙動を調整します。
type RendererOption func(*SceneRenderer)

// WithCallTimeout は画像モデル呼び出し1回あたりのデッドラインを差し替えます。
func WithCallTimeout(d time.Duration) RendererOption {
	return func(r *SceneRenderer) { r.callTimeout = d }
}

// WithUploadTimeout は画像の保存1回あたりのデッドラインを差し替えます。
func WithUploadTimeout(d time.Duration) RendererOption {
	return func(r *SceneRenderer) { r.uploadTimeout = d }
}

// WithMaxRetries はステージ内部での再試行回数を差し替えます。
func WithMaxRetries(n uint64) RendererOption {
	return func(r *SceneRenderer) { r.maxRetries = n }
}

// NewSceneRenderer は SceneRenderer を生成します。
func NewSceneRenderer(imageGen generator.ImageGenerator, uploader storage.Uploader, opts ...RendererOption) (*SceneRenderer, error) {
	if imageGen == nil {
		return nil, fmt.Errorf("imageGen is required")
	}
	if uploader == nil {
		return nil, fmt.Errorf("uploader is required")
	}

	r := &SceneRenderer{
		imageGen:      imageGen,
		uploader:      uploader,
		callTimeout:   defaultCallTimeout,
		uploadTimeout: defaultUploadTimeout,
		maxRetries:    defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Render はシーンを描画してストレージへ保存し、公開URLを返します。
// モデルの失敗、画像でない応答、保存の失敗はすべて RenderError になります。
func (r *SceneRenderer) Render(ctx context.Context, scene domain.Scene, index int, opts Options) (string, error) {
	positive, negative := BuildScenePrompt(scene, opts)

	resp, err := r.generate(ctx, imagedom.ImageGenerationRequest{
		Prompt:         positive,
		NegativePrompt: negative,
		AspectRatio:    opts.aspectRatio(),
	})
	if err != nil {
		return "", &RenderError{SceneIndex: index, Reason: "画像モデルの呼び出しに失敗", Cause: err}
	}

	// 返ってきたバイト列がラスタ画像としてデコードできることを保存前に確かめるのだ。
	if _, _, err := image.Decode(bytes.NewReader(resp.Data)); err != nil {
		return "", &RenderError{SceneIndex: index, Reason: "応答が画像としてデコードできません", Cause: err}
	}

	key := fmt.Sprintf("%s/scene_%02d%s", strings.TrimSuffix(opts.KeyPrefix, "/"), index+1, extensionFor(resp.MimeType))

	// 保存もモデル呼び出しと同じく、無期限に待たずデッドライン付きで行うのだ。
	uploadCtx, cancel := context.WithTimeout(ctx, r.uploadTimeout)
	defer cancel()
	url, err := r.uploader.Upload(uploadCtx, key, resp.Data, resp.MimeType)
	if err != nil {
		return "", &RenderError{SceneIndex: index, Reason: "画像の保存に失敗", Cause: err}
	}

	slog.Info("シーン画像を保存したのだ", "scene", index+1, "url", url, "bytes", len(resp.Data))
	return url, nil
}

func (r *SceneRenderer) generate(ctx context.Context, req imagedom.ImageGenerationRequest) (*imagedom.ImageResponse, error) {
	var resp *imagedom.ImageResponse

	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
		defer cancel()

		out, err := r.imageGen.GenerateMangaPanel(callCtx, req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		resp = out
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), r.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return resp, nil
}

// BuildScenePrompt は画風フレーズ、シーン記述、感情を1本の指示文に合成します。
func BuildScenePrompt(scene domain.Scene, opts Options) (positive, negative string) {
	style := opts.Style
	if _, ok := stylePrefixes[style]; !ok {
		style = DefaultStyle
	}

	parts := []string{
		stylePrefixes[style],
		scene.Description + " expressing " + scene.Emotion,
	}
	if opts.Quality == "high" {
		parts = append(parts, "masterpiece, ultra-detailed, high resolution")
	}

	return strings.Join(parts, ", "), opts.negativePrompt()
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
