package textbox

import (
	"image"
	"testing"

	"github.com/kazikikaziki/misc-sub002/internal/glyphatlas"
)

// fixedRasterizer returns a glyph of constant width and advance for every
// codepoint, so wrap-boundary math in tests is exact and deterministic.
type fixedRasterizer struct {
	advance int
}

func (f *fixedRasterizer) Rasterize(key glyphatlas.Key) (*image.Alpha, glyphatlas.Metrics, error) {
	img := image.NewAlpha(image.Rect(0, 0, f.advance, f.advance))
	return img, glyphatlas.Metrics{Right: f.advance, Bottom: f.advance, Advance: f.advance}, nil
}

func newTestBox(advance int, wrapWidth float64) *TextBox {
	atlas := glyphatlas.New(&fixedRasterizer{advance: advance}, 4096, nil)
	b := New(atlas, nil, nil)
	b.SetFont("default")
	b.SetLineHeight(100)
	b.SetAutoWrapWidth(wrapWidth)
	return b
}

func TestKinsokuKeepsClosingPunctuationOnPriorLine(t *testing.T) {
	b := newTestBox(90, 400)

	// テキスト。続き -- after テキスト (4 chars * 90 = 360), placing 。 would
	// push the right edge to 450 > 400, which would normally trigger a wrap,
	// but 。 is a line-head-forbidden character so it must stay on the first
	// line anyway.
	if err := b.AddString("テキスト。続き"); err != nil {
		t.Fatalf("AddString: %v", err)
	}

	chars := b.Chars()
	idx := -1
	for i, c := range chars {
		if c.Code == '。' {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.Fatalf("did not find '。' in %v", chars)
	}
	if chars[idx].Pos.Y != 0 {
		t.Fatalf("expected '。' to stay on the first line (y=0), got y=%v", chars[idx].Pos.Y)
	}
	// The character immediately after it ('続') is free to wrap since it is
	// not itself forbidden, and by then the cursor is already past width.
}

func TestAutoWrapBreaksAtBlank(t *testing.T) {
	b := newTestBox(50, 220)
	if err := b.AddString("aa bb cc"); err != nil {
		t.Fatalf("AddString: %v", err)
	}

	var lines = map[float64]int{}
	for _, c := range b.Chars() {
		lines[c.Pos.Y]++
	}
	if len(lines) < 2 {
		t.Fatalf("expected the text to wrap onto at least 2 lines, got positions %v", b.Chars())
	}
}

func TestGroupWrapsAsAtomicUnit(t *testing.T) {
	b := newTestBox(50, 220)
	if err := b.AddString("aaaa"); err != nil {
		t.Fatal(err)
	}
	anchor := b.BeginGroup()
	if err := b.AddString("bb"); err != nil {
		t.Fatal(err)
	}
	b.EndGroup()

	// The group's characters must all end up on the same line as the anchor,
	// and the anchor itself must have moved to the next line.
	anchorY := b.chars[anchor].Pos.Y
	if anchorY != 100 {
		t.Fatalf("group anchor y = %v, want 100 (wrapped to the next line)", anchorY)
	}
	for i, c := range b.Chars() {
		if c.Parent == anchor && c.Pos.Y != 0 {
			t.Fatalf("char %d fell off the group's line", i)
		}
	}
}

func TestMeshEmitsSixVerticesPerGlyph(t *testing.T) {
	b := newTestBox(20, 0)
	if err := b.AddString("AB"); err != nil {
		t.Fatal(err)
	}
	mesh := b.Mesh()
	if len(mesh) != 2*6 {
		t.Fatalf("mesh len = %d, want 12", len(mesh))
	}
}

func TestAddCharWithoutFontFails(t *testing.T) {
	atlas := glyphatlas.New(&fixedRasterizer{advance: 10}, 256, nil)
	b := New(atlas, nil, nil)
	if err := b.AddChar('x'); err == nil {
		t.Fatalf("expected an error when no font is set")
	}
}
