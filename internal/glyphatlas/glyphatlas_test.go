package glyphatlas

import (
	"image"
	"testing"
)

type fakeRasterizer struct {
	w, h int
}

func (f *fakeRasterizer) Rasterize(key Key) (*image.Alpha, Metrics, error) {
	img := image.NewAlpha(image.Rect(0, 0, f.w, f.h))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	return img, Metrics{Left: 0, Top: 0, Right: f.w, Bottom: f.h, Advance: f.w + 1}, nil
}

func TestGetCachesByKey(t *testing.T) {
	atlas := New(&fakeRasterizer{w: 8, h: 8}, 64, nil)

	k := Key{FontID: "default", Codepoint: 'A', SizeTenths: 120}
	e1, err := atlas.Get(k)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	e2, err := atlas.Get(k)
	if err != nil {
		t.Fatalf("Get (cached): %v", err)
	}
	if e1 != e2 {
		t.Fatalf("expected cached entry to be the same pointer")
	}
}

func TestAllocateRowWrapAndNewPage(t *testing.T) {
	// Page is 18x18; glyphs are 10x8 with margin=1. Two glyphs side by side
	// would need 11+11=22 > 18, so the second wraps to a new row at y=9, and
	// that row still fits vertically: 9+8+1 = 18 <= 18.
	atlas := New(&fakeRasterizer{w: 10, h: 8}, 18, nil)

	k1 := Key{FontID: "f", Codepoint: '1'}
	k2 := Key{FontID: "f", Codepoint: '2'}
	k3 := Key{FontID: "f", Codepoint: '3'}

	e1, err := atlas.Get(k1)
	if err != nil {
		t.Fatal(err)
	}
	e2, err := atlas.Get(k2)
	if err != nil {
		t.Fatal(err)
	}
	if e1.PageID != 0 || e2.PageID != 0 {
		t.Fatalf("expected both glyphs on page 0")
	}
	if e1.V0 == e2.V0 && e1.U0 == e2.U0 {
		t.Fatalf("expected glyphs to be placed at distinct positions")
	}

	// A third glyph wraps again to a row at y=18, and 18+8+1 = 27 > 18, so
	// it lands on a new page.
	e3, err := atlas.Get(k3)
	if err != nil {
		t.Fatal(err)
	}
	if e3.PageID == 0 && len(atlas.Pages()) == 1 {
		t.Fatalf("expected a new page to be allocated once rows overflow")
	}
}

func TestGlyphTooLargeForPageIsResourceExhausted(t *testing.T) {
	atlas := New(&fakeRasterizer{w: 32, h: 32}, 16, nil)
	_, err := atlas.Get(Key{FontID: "f", Codepoint: 'X'})
	if err == nil {
		t.Fatalf("expected an error for an oversized glyph")
	}
}
