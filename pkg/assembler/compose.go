package assembler

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/shouni/journal-manga-kit/pkg/domain"
)

// composePage はウィンドウ1つ分のパネル画像とセリフを1枚のPNGに合成します。
func composePage(panels []domain.RenderedScene, images []image.Image, face font.Face) ([]byte, error) {
	dc := gg.NewContext(PageWidth, PageHeight)

	// 地は白。コマ枠は細い黒線で引くのだ。
	dc.SetColor(color.White)
	dc.Clear()

	slots := layoutFor(len(panels))
	for i, slot := range slots {
		drawPanelImage(dc, images[i], slot.Image)

		dc.SetColor(color.Black)
		dc.SetLineWidth(3)
		dc.DrawRectangle(
			float64(slot.Image.Min.X), float64(slot.Image.Min.Y),
			float64(slot.Image.Dx()), float64(slot.Image.Dy()))
		dc.Stroke()

		drawDialogueStrip(dc, panels[i].Scene.Dialogues, slot.Dialogue, face)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("PNGエンコードに失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}

// drawPanelImage はアスペクト比を保ったままスロットに収まるよう縮尺して描きます。
func drawPanelImage(dc *gg.Context, img image.Image, slot image.Rectangle) {
	b := img.Bounds()
	scale := minFloat(
		float64(slot.Dx())/float64(b.Dx()),
		float64(slot.Dy())/float64(b.Dy()),
	)
	w := int(float64(b.Dx()) * scale)
	h := int(float64(b.Dy()) * scale)

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Over, nil)

	// スロット内で中央寄せなのだ。
	x := slot.Min.X + (slot.Dx()-w)/2
	y := slot.Min.Y + (slot.Dy()-h)/2
	dc.DrawImage(scaled, x, y)
}

// drawDialogueStrip はセリフ帯を描き、行を折り返して詰めます。
func drawDialogueStrip(dc *gg.Context, dialogues []string, strip image.Rectangle, face font.Face) {
	dc.SetColor(color.RGBA{R: 245, G: 245, B: 245, A: 255})
	dc.DrawRectangle(float64(strip.Min.X), float64(strip.Min.Y), float64(strip.Dx()), float64(strip.Dy()))
	dc.Fill()

	if len(dialogues) == 0 {
		return
	}

	if face == nil {
		face = basicfont.Face7x13
	}
	dc.SetFontFace(face)
	dc.SetColor(color.Black)

	const padding = 12
	text := strings.Join(dialogues, "  ")
	dc.DrawStringWrapped(text,
		float64(strip.Min.X+padding), float64(strip.Min.Y+padding),
		0, 0,
		float64(strip.Dx()-2*padding),
		1.4, gg.AlignLeft)
}

// decodeImage はフェッチしたバイト列をラスタ画像にデコードします。
func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("画像のデコードに失敗しました: %w", err)
	}
	return img, nil
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
