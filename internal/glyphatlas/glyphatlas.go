// Package glyphatlas packs rasterised glyph bitmaps into fixed-size pages
// using a shelf/row allocator, and caches them by a stable key so a glyph is
// rasterised at most once per session.
package glyphatlas

import (
	"image"

	"github.com/kazikikaziki/misc-sub002/internal/debug"
	"github.com/kazikikaziki/misc-sub002/internal/errs"
)

// Style mirrors the text rendering styles a glyph can be rasterised in.
type Style int

const (
	StyleNormal Style = iota
	StyleBold
	StyleOutline
	StyleOutlineFilled
)

// Key identifies a cached glyph. SizeTenths holds point size * 10 so fonts
// can be requested at fractional sizes without using a float in the map key.
type Key struct {
	FontID        string
	Codepoint     rune
	SizeTenths    int
	Style         Style
	WithAlpha     bool
	PrimaryARGB   uint32
	SecondaryARGB uint32
}

// Metrics is what a Rasterizer reports about a single glyph, in pixels,
// relative to the glyph's own origin.
type Metrics struct {
	Left, Top, Right, Bottom int
	Advance                  int
}

// Rasterizer turns a Key into an 8-bit alpha coverage bitmap plus metrics.
// Implementations live in internal/rasterfont; the atlas never rasterises
// anything itself.
type Rasterizer interface {
	Rasterize(key Key) (*image.Alpha, Metrics, error)
}

// Entry is the cached placement of one glyph on one page, in UV space
// ([0,1]) and in the glyph's local pixel-offset metrics.
type Entry struct {
	PageID                   int
	U0, V0, U1, V1           float32
	Left, Top, Right, Bottom int
	Advance                  int
}

// Page is one fixed-size bitmap the atlas packs glyphs into.
type Page struct {
	Image      *image.Alpha
	Width      int
	Height     int
	cursorX    int
	rowTop     int
	rowNextTop int
}

func newPage(width, height int) *Page {
	return &Page{
		Image:  image.NewAlpha(image.Rect(0, 0, width, height)),
		Width:  width,
		Height: height,
	}
}

const (
	defaultPageSize = 2048
	margin          = 1
)

// Atlas is a multi-page, write-only glyph cache.
type Atlas struct {
	rasterizer Rasterizer
	pageSize   int
	pages      []*Page
	cache      map[Key]*Entry
	logger     *debug.Logger
}

// New creates an atlas that rasterises cache misses through r. pageSize of
// 0 uses the default 2048x2048 page.
func New(r Rasterizer, pageSize int, logger *debug.Logger) *Atlas {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Atlas{
		rasterizer: r,
		pageSize:   pageSize,
		cache:      make(map[Key]*Entry),
		logger:     logger,
	}
}

// Pages returns the atlas's backing pages, in allocation order.
func (a *Atlas) Pages() []*Page { return a.pages }

// Get returns the cached entry for key, rasterising and packing it on miss.
func (a *Atlas) Get(key Key) (*Entry, error) {
	if e, ok := a.cache[key]; ok {
		return e, nil
	}
	img, metrics, err := a.rasterizer.Rasterize(key)
	if err != nil {
		return nil, errs.New(errs.KindDecoderFormat, "glyphatlas.Get", err)
	}
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	page, pageID, x, y, err := a.allocate(w, h)
	if err != nil {
		return nil, err
	}
	drawAlpha(page.Image, x, y, img)

	e := &Entry{
		PageID:  pageID,
		U0:      float32(x) / float32(a.pageSize),
		V0:      float32(y) / float32(a.pageSize),
		U1:      float32(x+w) / float32(a.pageSize),
		V1:      float32(y+h) / float32(a.pageSize),
		Left:    metrics.Left,
		Top:     metrics.Top,
		Right:   metrics.Right,
		Bottom:  metrics.Bottom,
		Advance: metrics.Advance,
	}
	a.cache[key] = e
	if a.logger != nil {
		a.logger.LogAtlasf(debug.LogLevelTrace, "packed glyph font=%s cp=%d page=%d at (%d,%d)", key.FontID, key.Codepoint, pageID, x, y)
	}
	return e, nil
}

// allocate finds room for a w x h glyph, following the packing policy: scan
// the current row to the right; if it doesn't fit horizontally, start a new
// row; if it doesn't fit vertically either, allocate a new page.
func (a *Atlas) allocate(w, h int) (page *Page, pageID, x, y int, err error) {
	if w+margin > a.pageSize || h+margin > a.pageSize {
		return nil, 0, 0, 0, errs.New(errs.KindResourceExhausted, "glyphatlas.allocate", nil)
	}
	if len(a.pages) == 0 {
		a.pages = append(a.pages, newPage(a.pageSize, a.pageSize))
	}
	p := a.pages[len(a.pages)-1]

	if p.cursorX+w+margin > p.Width {
		p.cursorX = 0
		p.rowTop = p.rowNextTop
	}
	if p.rowTop+h+margin > p.Height {
		p = newPage(a.pageSize, a.pageSize)
		a.pages = append(a.pages, p)
		if a.logger != nil {
			a.logger.LogAtlasf(debug.LogLevelDebug, "allocated atlas page %d", len(a.pages)-1)
		}
	}

	px, py := p.cursorX, p.rowTop
	p.cursorX += w + margin
	if p.rowTop+h+margin > p.rowNextTop {
		p.rowNextTop = p.rowTop + h + margin
	}
	return p, len(a.pages) - 1, px, py, nil
}

func drawAlpha(dst *image.Alpha, x, y int, src *image.Alpha) {
	b := src.Bounds()
	for sy := b.Min.Y; sy < b.Max.Y; sy++ {
		for sx := b.Min.X; sx < b.Max.X; sx++ {
			v := src.AlphaAt(sx, sy)
			dst.SetAlpha(x+(sx-b.Min.X), y+(sy-b.Min.Y), v)
		}
	}
}
