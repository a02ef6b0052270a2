package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	imagedom "github.com/shouni/gemini-image-kit/pkg/domain"

	"github.com/shouni/journal-manga-kit/pkg/domain"
)

// mockImageGen は generator.ImageGenerator のテスト用モックなのだ。
type mockImageGen struct {
	panelFunc func(ctx context.Context, req imagedom.ImageGenerationRequest) (*imagedom.ImageResponse, error)
}

func (m *mockImageGen) GenerateMangaPanel(ctx context.Context, req imagedom.ImageGenerationRequest) (*imagedom.ImageResponse, error) {
	if m.panelFunc != nil {
		return m.panelFunc(ctx, req)
	}
	return &imagedom.ImageResponse{Data: dummyPNG(), MimeType: "image/png"}, nil
}

func (m *mockImageGen) GenerateMangaPage(ctx context.Context, req imagedom.ImagePageRequest) (*imagedom.ImageResponse, error) {
	return &imagedom.ImageResponse{Data: dummyPNG(), MimeType: "image/png"}, nil
}

// mockUploader は storage.Uploader のテスト用モックなのだ。
type mockUploader struct {
	mu       sync.Mutex
	keys     []string
	uploadFn func(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

func (m *mockUploader) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	m.keys = append(m.keys, key)
	m.mu.Unlock()

	if m.uploadFn != nil {
		return m.uploadFn(ctx, key, data, contentType)
	}
	return "https://storage.example.com/" + key, nil
}

// mockRenderer は Renderer のテスト用モックなのだ。
type mockRenderer struct {
	renderFunc func(ctx context.Context, scene domain.Scene, index int, opts Options) (string, error)
}

func (m *mockRenderer) Render(ctx context.Context, scene domain.Scene, index int, opts Options) (string, error) {
	if m.renderFunc != nil {
		return m.renderFunc(ctx, scene, index, opts)
	}
	return "https://storage.example.com/mock.png", nil
}

// dummyPNG は 2x2 のPNGバイト列を返すヘルパーなのだ。
func dummyPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// makeScenes は指定数のシーン列を組み立てるヘルパーなのだ。
func makeScenes(t *testing.T, n int) []domain.Scene {
	t.Helper()
	scenes := make([]domain.Scene, n)
	for i := range scenes {
		scenes[i] = domain.Scene{
			Description: "scene description",
			Emotion:     "happy",
			Dialogues:   []string{"hi"},
		}
	}
	return scenes
}
