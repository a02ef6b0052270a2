package render

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shouni/journal-manga-kit/pkg/domain"
)

func TestBatchGenerator_RenderAll(t *testing.T) {
	ctx := context.Background()

	t.Run("シーン数3〜5で入力と同じ長さ・同じ並びの結果が返ること", func(t *testing.T) {
		for _, count := range []int{3, 4, 5} {
			t.Run(fmt.Sprintf("%dシーン", count), func(t *testing.T) {
				renderer := &mockRenderer{
					renderFunc: func(ctx context.Context, scene domain.Scene, index int, opts Options) (string, error) {
						return fmt.Sprintf("https://storage.example.com/scene_%02d.png", index+1), nil
					},
				}
				bg, err := NewBatchGenerator(renderer)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}

				results, err := bg.RenderAll(ctx, makeScenes(t, count), Options{})
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(results) != count {
					t.Fatalf("expected %d results, got %d", count, len(results))
				}
				for i, rs := range results {
					if rs.Index != i {
						t.Errorf("results[%d].Index = %d, order not preserved", i, rs.Index)
					}
					want := fmt.Sprintf("https://storage.example.com/scene_%02d.png", i+1)
					if rs.ImageURL != want {
						t.Errorf("results[%d].ImageURL = %s, want %s", i, rs.ImageURL, want)
					}
				}
			})
		}
	})

	t.Run("完了順が前後しても出力の並びは元のシーン順であること", func(t *testing.T) {
		// 前のシーンほど遅く完成させて、追い越しが起きないことを確かめるのだ。
		renderer := &mockRenderer{
			renderFunc: func(ctx context.Context, scene domain.Scene, index int, opts Options) (string, error) {
				time.Sleep(time.Duration(5-index) * 20 * time.Millisecond)
				return fmt.Sprintf("url-%d", index), nil
			},
		}
		bg, _ := NewBatchGenerator(renderer, WithConcurrency(5))

		results, err := bg.RenderAll(ctx, makeScenes(t, 5), Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, rs := range results {
			if rs.ImageURL != fmt.Sprintf("url-%d", i) {
				t.Errorf("completion skew reordered results: index %d has %s", i, rs.ImageURL)
			}
		}
	})

	t.Run("1シーンの失敗で呼び出し全体が失敗し結果は返らないこと", func(t *testing.T) {
		renderer := &mockRenderer{
			renderFunc: func(ctx context.Context, scene domain.Scene, index int, opts Options) (string, error) {
				if index == 1 {
					return "", &RenderError{SceneIndex: index, Reason: "model exploded"}
				}
				return "ok", nil
			},
		}
		bg, _ := NewBatchGenerator(renderer)

		results, err := bg.RenderAll(ctx, makeScenes(t, 4), Options{})

		var rerr *RenderError
		if !errors.As(err, &rerr) {
			t.Fatalf("expected RenderError, got %v", err)
		}
		if results != nil {
			t.Error("fail-fast must not return a partial result list")
		}
	})

	t.Run("同時実行数が上限3を超えないこと", func(t *testing.T) {
		var inFlight, peak int64
		var mu sync.Mutex

		renderer := &mockRenderer{
			renderFunc: func(ctx context.Context, scene domain.Scene, index int, opts Options) (string, error) {
				current := atomic.AddInt64(&inFlight, 1)
				mu.Lock()
				if current > peak {
					peak = current
				}
				mu.Unlock()
				time.Sleep(15 * time.Millisecond)
				atomic.AddInt64(&inFlight, -1)
				return "ok", nil
			},
		}
		bg, _ := NewBatchGenerator(renderer, WithConcurrency(3))

		if _, err := bg.RenderAll(ctx, makeScenes(t, 10), Options{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak > 3 {
			t.Errorf("observed %d concurrent renders, cap is 3", peak)
		}
	})
}

func TestBatchGenerator_RenderAllBestEffort(t *testing.T) {
	ctx := context.Background()

	renderer := &mockRenderer{
		renderFunc: func(ctx context.Context, scene domain.Scene, index int, opts Options) (string, error) {
			if index%2 == 1 {
				return "", &RenderError{SceneIndex: index, Reason: "flaky"}
			}
			return fmt.Sprintf("url-%d", index), nil
		},
	}
	bg, _ := NewBatchGenerator(renderer)

	outcomes := bg.RenderAllBestEffort(ctx, makeScenes(t, 4), Options{})

	if len(outcomes) != 4 {
		t.Fatalf("expected 4 outcomes, got %d", len(outcomes))
	}
	for i, o := range outcomes {
		if o.Index != i {
			t.Errorf("outcomes[%d].Index = %d, order not preserved", i, o.Index)
		}
		if i%2 == 1 && o.Err == nil {
			t.Errorf("outcomes[%d] should carry the failure marker", i)
		}
		if i%2 == 0 && (o.Err != nil || o.ImageURL == "") {
			t.Errorf("outcomes[%d] should be a success, got %+v", i, o)
		}
	}
}
