package assembler

import (
	"image"
	"math"
)

// ページキャンバスの寸法なのだ。縦長の単ページ（Webtoon寄り）を基準にする。
const (
	PageWidth  = 1200
	PageHeight = 1800

	pageMargin  = 48
	panelGutter = 32

	// 各パネルの下端に確保するセリフ帯の高さ。
	dialogueStripHeight = 120
)

// panelSlot は1パネル分の配置（画像領域とセリフ帯）です。
type panelSlot struct {
	Image    image.Rectangle
	Dialogue image.Rectangle
}

// layoutFor はウィンドウサイズごとの固定レイアウトを返します。
// 1・2・3パネルには専用の割り付けがあり、それ以外は汎用グリッドに落ちるのだ。
func layoutFor(count int) []panelSlot {
	content := image.Rect(pageMargin, pageMargin, PageWidth-pageMargin, PageHeight-pageMargin)

	switch count {
	case 1:
		// 全面1枚。見開きの大ゴマ相当なのだ。
		return []panelSlot{slotIn(content)}
	case 2:
		// 上下2段。
		upper, lower := splitVertical(content, 2)
		return []panelSlot{slotIn(upper), slotIn(lower)}
	case 3:
		// 最初のコマを大きく取り、残り2つを下段に並べる。
		rows := splitVerticalWeighted(content, 0.55)
		left, right := splitHorizontal(rows[1])
		return []panelSlot{slotIn(rows[0]), slotIn(left), slotIn(right)}
	default:
		return gridLayout(content, count)
	}
}

func slotIn(r image.Rectangle) panelSlot {
	return panelSlot{
		Image:    image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y-dialogueStripHeight),
		Dialogue: image.Rect(r.Min.X, r.Max.Y-dialogueStripHeight, r.Max.X, r.Max.Y),
	}
}

func splitVertical(r image.Rectangle, rows int) (image.Rectangle, image.Rectangle) {
	h := (r.Dy() - panelGutter) / rows
	upper := image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+h)
	lower := image.Rect(r.Min.X, upper.Max.Y+panelGutter, r.Max.X, r.Max.Y)
	return upper, lower
}

// splitVerticalWeighted は上段に ratio 分の高さを与えて2段に割ります。
func splitVerticalWeighted(r image.Rectangle, ratio float64) []image.Rectangle {
	upperH := int(float64(r.Dy()-panelGutter) * ratio)
	upper := image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+upperH)
	lower := image.Rect(r.Min.X, upper.Max.Y+panelGutter, r.Max.X, r.Max.Y)
	return []image.Rectangle{upper, lower}
}

func splitHorizontal(r image.Rectangle) (image.Rectangle, image.Rectangle) {
	w := (r.Dx() - panelGutter) / 2
	left := image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y)
	right := image.Rect(left.Max.X+panelGutter, r.Min.Y, r.Max.X, r.Max.Y)
	return left, right
}

// gridLayout は 1〜3 以外のウィンドウサイズ向けの汎用グリッドなのだ。
func gridLayout(content image.Rectangle, count int) []panelSlot {
	cols := int(math.Ceil(math.Sqrt(float64(count))))
	rows := int(math.Ceil(float64(count) / float64(cols)))

	cellW := (content.Dx() - panelGutter*(cols-1)) / cols
	cellH := (content.Dy() - panelGutter*(rows-1)) / rows

	slots := make([]panelSlot, 0, count)
	for i := 0; i < count; i++ {
		col := i % cols
		row := i / cols
		x0 := content.Min.X + col*(cellW+panelGutter)
		y0 := content.Min.Y + row*(cellH+panelGutter)
		slots = append(slots, slotIn(image.Rect(x0, y0, x0+cellW, y0+cellH)))
	}
	return slots
}
