package render

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"

	"github.com/shouni/journal-manga-kit/pkg/domain"
)

func TestBuildScenePrompt(t *testing.T) {
	scene := domain.Scene{Description: "a child waves goodbye", Emotion: "joy"}

	t.Run("記述と感情が 'expressing' で接続されること", func(t *testing.T) {
		positive, _ := BuildScenePrompt(scene, Options{Style: "manga"})

		if !strings.Contains(positive, "a child waves goodbye expressing joy") {
			t.Errorf("unexpected prompt: %s", positive)
		}
		if !strings.HasPrefix(positive, stylePrefixes["manga"]) {
			t.Errorf("style prefix should lead the prompt: %s", positive)
		}
	})

	t.Run("未知のスタイルは既定スタイルに落ちること", func(t *testing.T) {
		positive, _ := BuildScenePrompt(scene, Options{Style: "cubism"})
		if !strings.HasPrefix(positive, stylePrefixes[DefaultStyle]) {
			t.Errorf("expected default style prefix, got: %s", positive)
		}
	})

	t.Run("ネガティブプロンプトの指定が優先されること", func(t *testing.T) {
		_, negative := BuildScenePrompt(scene, Options{NegativePrompt: "no cats"})
		if negative != "no cats" {
			t.Errorf("expected custom negative prompt, got: %s", negative)
		}
		_, negative = BuildScenePrompt(scene, Options{})
		if negative != DefaultNegativePrompt {
			t.Errorf("expected default negative prompt, got: %s", negative)
		}
	})
}

func TestSceneRenderer_Render(t *testing.T) {
	ctx := context.Background()
	scene := domain.Scene{Description: "playing in the park", Emotion: "happy"}

	t.Run("Success/生成された画像が保存されURLが返ること", func(t *testing.T) {
		var captured imagedom.ImageGenerationRequest
		gen := &mockImageGen{
			panelFunc: func(ctx context.Context, req imagedom.ImageGenerationRequest) (*imagedom.ImageResponse, error) {
				captured = req
				return &imagedom.ImageResponse{Data: dummyPNG(), MimeType: "image/png"}, nil
			},
		}
		up := &mockUploader{}
		r, err := NewSceneRenderer(gen, up, WithMaxRetries(0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		url, err := r.Render(ctx, scene, 0, Options{Style: "anime", KeyPrefix: "runs/abc"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(url, "https://storage.example.com/runs/abc/scene_01") {
			t.Errorf("unexpected url: %s", url)
		}
		if captured.NegativePrompt != DefaultNegativePrompt {
			t.Errorf("negative prompt should be injected, got: %s", captured.NegativePrompt)
		}
		if len(up.keys) != 1 || up.keys[0] != "runs/abc/scene_01.png" {
			t.Errorf("unexpected storage keys: %v", up.keys)
		}
	})

	t.Run("Failure/画像でない応答は RenderError になること", func(t *testing.T) {
		gen := &mockImageGen{
			panelFunc: func(ctx context.Context, req imagedom.ImageGenerationRequest) (*imagedom.ImageResponse, error) {
				return &imagedom.ImageResponse{Data: []byte("not an image"), MimeType: "text/plain"}, nil
			},
		}
		r, _ := NewSceneRenderer(gen, &mockUploader{}, WithMaxRetries(0))

		_, err := r.Render(ctx, scene, 2, Options{KeyPrefix: "runs/abc"})

		var rerr *RenderError
		if !errors.As(err, &rerr) {
			t.Fatalf("expected RenderError, got %v", err)
		}
		if rerr.SceneIndex != 2 {
			t.Errorf("expected scene index 2, got %d", rerr.SceneIndex)
		}
	})

	t.Run("Failure/保存の失敗も RenderError になること", func(t *testing.T) {
		up := &mockUploader{
			uploadFn: func(ctx context.Context, key string, data []byte, contentType string) (string, error) {
				return "", errors.New("bucket unavailable")
			},
		}
		r, _ := NewSceneRenderer(&mockImageGen{}, up, WithMaxRetries(0))

		_, err := r.Render(ctx, scene, 0, Options{KeyPrefix: "runs/abc"})

		var rerr *RenderError
		if !errors.As(err, &rerr) {
			t.Fatalf("expected RenderError, got %v", err)
		}
	})

	t.Run("Failure/止まったストレージを無期限に待たず RenderError で打ち切ること", func(t *testing.T) {
		up := &mockUploader{
			uploadFn: func(ctx context.Context, key string, data []byte, contentType string) (string, error) {
				// デッドラインが切られるまで戻らないストレージを演じるのだ
				<-ctx.Done()
				return "", ctx.Err()
			},
		}
		r, _ := NewSceneRenderer(&mockImageGen{}, up,
			WithMaxRetries(0), WithUploadTimeout(20*time.Millisecond))

		done := make(chan error, 1)
		go func() {
			_, err := r.Render(ctx, scene, 0, Options{KeyPrefix: "runs/abc"})
			done <- err
		}()

		select {
		case err := <-done:
			var rerr *RenderError
			if !errors.As(err, &rerr) {
				t.Fatalf("expected RenderError, got %v", err)
			}
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("expected deadline exceeded in chain, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("upload without a deadline hung the render")
		}
	})
}
