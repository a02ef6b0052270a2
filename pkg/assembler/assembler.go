package assembler

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/shouni/journal-manga-kit/pkg/domain"
	"github.com/shouni/journal-manga-kit/pkg/storage"
)

// DefaultPanelsPerPage は1ページに収めるパネル数の既定値です。
const DefaultPanelsPerPage = 3

const defaultUploadTimeout = 60 * time.Second

// ImageFetcher はパネル画像のバイト列を取得する窓口です。
// go-http-kit のクライアントがそのまま適合します。
type ImageFetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// PageAssembler は描画済みシーンを固定サイズのウィンドウで区切り、
// それぞれを1枚のページ画像へ合成して保存します。
// ウィンドウは連続・非重複・順序保存で、最後だけ短くてよいのだ。
type PageAssembler struct {
	fetcher       ImageFetcher
	uploader      storage.Uploader
	face          font.Face
	uploadTimeout time.Duration
}

// AssemblerOption は PageAssembler の挙動を調整します。
type AssemblerOption func(*PageAssembler) error

// WithFontFile はセリフ描画に使うTrueTypeフォントを読み込みます。
// 指定がなければ内蔵のビットマップフォントで描きます。
func WithFontFile(path string, points float64) AssemblerOption {
	return func(a *PageAssembler) error {
		face, err := gg.LoadFontFace(path, points)
		if err != nil {
			return fmt.Errorf("フォント '%s' の読み込みに失敗しました: %w", path, err)
		}
		a.face = face
		return nil
	}
}

// WithUploadTimeout はページ画像の保存1回あたりのデッドラインを差し替えます。
func WithUploadTimeout(d time.Duration) AssemblerOption {
	return func(a *PageAssembler) error {
		a.uploadTimeout = d
		return nil
	}
}

// New は PageAssembler を生成します。
func New(fetcher ImageFetcher, uploader storage.Uploader, opts ...AssemblerOption) (*PageAssembler, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if uploader == nil {
		return nil, fmt.Errorf("uploader is required")
	}

	a := &PageAssembler{fetcher: fetcher, uploader: uploader, uploadTimeout: defaultUploadTimeout}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Assemble は描画済みシーンをページ単位に合成し、順序通りのページ列を返します。
// ウィンドウ内のどれか1枚でも取得・デコードできなければ AssemblyError で失敗します。
func (a *PageAssembler) Assemble(ctx context.Context, scenes []domain.RenderedScene, panelsPerPage int, keyPrefix string) ([]domain.Page, error) {
	if len(scenes) == 0 {
		return nil, fmt.Errorf("scenes is empty")
	}
	if panelsPerPage < 1 {
		panelsPerPage = DefaultPanelsPerPage
	}

	windows := chunkScenes(scenes, panelsPerPage)
	slog.Info("ページ合成を開始するのだ", "scenes", len(scenes), "panels_per_page", panelsPerPage, "pages", len(windows))

	pages := make([]domain.Page, 0, len(windows))
	for w, window := range windows {
		pageNumber := w + 1

		images, err := a.fetchWindow(ctx, window)
		if err != nil {
			return nil, &AssemblyError{PageNumber: pageNumber, Reason: "パネル画像の取得に失敗", Cause: err}
		}

		composed, err := composePage(window, images, a.face)
		if err != nil {
			return nil, &AssemblyError{PageNumber: pageNumber, Reason: "ページ画像の合成に失敗", Cause: err}
		}

		key := fmt.Sprintf("%s/page_%02d.png", strings.TrimSuffix(keyPrefix, "/"), pageNumber)
		url, err := a.upload(ctx, key, composed)
		if err != nil {
			return nil, &AssemblyError{PageNumber: pageNumber, Reason: "ページ画像の保存に失敗", Cause: err}
		}

		pages = append(pages, domain.Page{
			PageNumber: pageNumber,
			Panels:     window,
			PageURL:    url,
		})
		slog.Info("ページを合成したのだ", "page", pageNumber, "panels", len(window), "url", url)
	}

	return pages, nil
}

// upload はページ画像をデッドライン付きで保存します。止まったストレージを無期限に待たないのだ。
func (a *PageAssembler) upload(ctx context.Context, key string, data []byte) (string, error) {
	uploadCtx, cancel := context.WithTimeout(ctx, a.uploadTimeout)
	defer cancel()
	return a.uploader.Upload(uploadCtx, key, data, "image/png")
}

// fetchWindow はウィンドウ内の全パネル画像を取得してデコードします。
func (a *PageAssembler) fetchWindow(ctx context.Context, window []domain.RenderedScene) ([]image.Image, error) {
	images := make([]image.Image, len(window))
	for i, rs := range window {
		data, err := a.fetcher.FetchBytes(ctx, rs.ImageURL)
		if err != nil {
			return nil, fmt.Errorf("シーン %d の画像 '%s' を取得できません: %w", rs.Index+1, rs.ImageURL, err)
		}
		img, err := decodeImage(data)
		if err != nil {
			return nil, fmt.Errorf("シーン %d: %w", rs.Index+1, err)
		}
		images[i] = img
	}
	return images, nil
}

// chunkScenes は連続・非重複・順序保存のウィンドウ分割なのだ。最後だけ短くてよい。
func chunkScenes(scenes []domain.RenderedScene, size int) [][]domain.RenderedScene {
	var windows [][]domain.RenderedScene
	for start := 0; start < len(scenes); start += size {
		end := start + size
		if end > len(scenes) {
			end = len(scenes)
		}
		windows = append(windows, scenes[start:end])
	}
	return windows
}
