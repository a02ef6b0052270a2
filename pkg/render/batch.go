package render

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/shouni/journal-manga-kit/pkg/domain"
)

// DefaultConcurrency は同時に飛ばす画像生成リクエストの上限です。
// 画像モデル側のレート制限と、生成中バッファのメモリ量を抑えるための固定上限なのだ。
const DefaultConcurrency = 3

// Renderer は BatchGenerator が駆動する1シーン分の描画窓口です。
type Renderer interface {
	Render(ctx context.Context, scene domain.Scene, index int, opts Options) (string, error)
}

// BatchGenerator は物語の全シーンを描画し、入力と同じ並びで結果を返します。
// 並び順は Narrative Analyzer が一度だけ決めたものであり、
// どのシーンが先に完成しても出力では追い越させません。
type BatchGenerator struct {
	renderer    Renderer
	concurrency int
	limiter     *rate.Limiter
}

// BatchOption は BatchGenerator の挙動を調整します。
type BatchOption func(*BatchGenerator)

// WithConcurrency は同時実行数の上限を差し替えます（1未満は既定値に丸める）。
func WithConcurrency(n int) BatchOption {
	return func(b *BatchGenerator) {
		if n >= 1 {
			b.concurrency = n
		}
	}
}

// WithRateInterval はリクエスト間隔の流量制限を追加します（0で無効）。
func WithRateInterval(interval time.Duration) BatchOption {
	return func(b *BatchGenerator) {
		if interval > 0 {
			b.limiter = rate.NewLimiter(rate.Every(interval), 2)
		}
	}
}

// NewBatchGenerator は BatchGenerator を生成します。
func NewBatchGenerator(renderer Renderer, opts ...BatchOption) (*BatchGenerator, error) {
	if renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}

	b := &BatchGenerator{
		renderer:    renderer,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// RenderAll は全シーンを上限付きの並列で描画します。
// 1シーンでも失敗すれば呼び出し全体が失敗し、部分的な結果は返しません（フェイルファスト）。
func (b *BatchGenerator) RenderAll(ctx context.Context, scenes []domain.Scene, opts Options) ([]domain.RenderedScene, error) {
	if len(scenes) == 0 {
		return nil, fmt.Errorf("scenes is empty")
	}

	slog.Info("並列画像生成を開始するのだ", "scenes", len(scenes), "concurrency", b.concurrency)

	// インデックスで書き込むことで、完了順に関係なく元の並びを保つのだ。
	results := make([]domain.RenderedScene, len(scenes))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(b.concurrency)

	for i, scene := range scenes {
		i, scene := i, scene
		eg.Go(func() error {
			if b.limiter != nil {
				if err := b.limiter.Wait(egCtx); err != nil {
					return err
				}
			}

			url, err := b.renderer.Render(egCtx, scene, i, opts)
			if err != nil {
				return err
			}

			results[i] = domain.RenderedScene{Scene: scene, Index: i, ImageURL: url}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	slog.Info("すべてのシーンが描画できたのだ", "total", len(results))
	return results, nil
}

// SceneOutcome はベストエフォート版の1シーン分の結果です。Err が nil なら成功です。
type SceneOutcome struct {
	Scene    domain.Scene
	Index    int
	ImageURL string
	Err      error
}

// RenderAllBestEffort は失敗したシーンを印付きで残しつつ全件を試みます。
// 既定の挙動はあくまで RenderAll のフェイルファストで、こちらは明示的に選んだ場合のみ使います。
func (b *BatchGenerator) RenderAllBestEffort(ctx context.Context, scenes []domain.Scene, opts Options) []SceneOutcome {
	outcomes := make([]SceneOutcome, len(scenes))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(b.concurrency)

	for i, scene := range scenes {
		i, scene := i, scene
		eg.Go(func() error {
			outcome := SceneOutcome{Scene: scene, Index: i}
			if b.limiter != nil {
				if err := b.limiter.Wait(egCtx); err != nil {
					outcome.Err = err
					outcomes[i] = outcome
					return nil
				}
			}

			url, err := b.renderer.Render(egCtx, scene, i, opts)
			outcome.ImageURL = url
			outcome.Err = err
			outcomes[i] = outcome
			return nil // 失敗は印として残すだけで、他のシーンは止めない
		})
	}

	_ = eg.Wait()
	return outcomes
}
