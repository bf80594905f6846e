//go:build !no_sdl_ttf
// +build !no_sdl_ttf

package rasterfont

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/veandco/go-sdl2/sdl"
	"github.com/veandco/go-sdl2/ttf"

	"github.com/kazikikaziki/misc-sub002/internal/glyphatlas"
)

// systemFontPaths lists common installed-font locations to probe when a
// caller registers a font id without an explicit path.
var systemFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/noto/NotoSans-Regular.ttf",
	"/System/Library/Fonts/Helvetica.ttc",
	"C:/Windows/Fonts/arial.ttf",
}

// SDLTTFRegistry rasterises glyphs using real TrueType fonts via SDL_ttf,
// giving GlyphAtlas access to hinted, correctly-sized glyph bitmaps instead
// of FaceRegistry's fixed bitmap fallback. Each (font_id, size) pair opens
// its own *ttf.Font, since SDL_ttf bakes size into the font handle.
type SDLTTFRegistry struct {
	mu      sync.Mutex
	paths   map[string]string // font_id -> TTF path, "" means "probe system fonts"
	opened  map[string]*ttf.Font
	started bool
}

// NewSDLTTFRegistry initialises SDL_ttf. Callers must call Close when done.
func NewSDLTTFRegistry() (*SDLTTFRegistry, error) {
	if err := ttf.Init(); err != nil {
		return nil, fmt.Errorf("rasterfont: ttf.Init: %w", err)
	}
	return &SDLTTFRegistry{
		paths:   make(map[string]string),
		opened:  make(map[string]*ttf.Font),
		started: true,
	}, nil
}

// RegisterPath binds fontID to an explicit TTF/OTF file path.
func (r *SDLTTFRegistry) RegisterPath(fontID, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths[fontID] = path
}

func (r *SDLTTFRegistry) openAt(fontID string, pointSize int) (*ttf.Font, error) {
	key := fmt.Sprintf("%s@%d", fontID, pointSize)
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.opened[key]; ok {
		return f, nil
	}

	path, explicit := r.paths[fontID]
	candidates := systemFontPaths
	if explicit && path != "" {
		candidates = []string{path}
	}

	var font *ttf.Font
	var err error
	for _, p := range candidates {
		font, err = ttf.OpenFont(p, pointSize)
		if err == nil {
			break
		}
	}
	if font == nil {
		return nil, fmt.Errorf("rasterfont: no usable font for %q at size %d (tried %v): %w", fontID, pointSize, candidates, err)
	}
	r.opened[key] = font
	return font, nil
}

// Rasterize implements glyphatlas.Rasterizer.
func (r *SDLTTFRegistry) Rasterize(key glyphatlas.Key) (*image.Alpha, glyphatlas.Metrics, error) {
	pointSize := key.SizeTenths / 10
	if pointSize <= 0 {
		pointSize = 12
	}
	font, err := r.openAt(key.FontID, pointSize)
	if err != nil {
		return nil, glyphatlas.Metrics{}, err
	}

	surface, err := font.RenderGlyphSolid(key.Codepoint, sdl.Color{R: 255, G: 255, B: 255, A: 255})
	if err != nil {
		return nil, glyphatlas.Metrics{}, fmt.Errorf("rasterfont: RenderGlyphSolid: %w", err)
	}
	defer surface.Free()

	minX, maxX, minY, maxY, advance, err := font.GlyphMetrics(key.Codepoint)
	if err != nil {
		return nil, glyphatlas.Metrics{}, fmt.Errorf("rasterfont: GlyphMetrics: %w", err)
	}

	w, h := int(surface.W), int(surface.H)
	out := image.NewAlpha(image.Rect(0, 0, w, h))
	pixels := surface.Pixels()
	bpp := int(surface.Format.BytesPerPixel)
	pitch := int(surface.Pitch)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := y*pitch + x*bpp
			if off+bpp > len(pixels) {
				continue
			}
			// Solid-rendered glyph surfaces are paletted or RGB with the
			// glyph coverage carried in the red channel; treat it as alpha.
			out.SetAlpha(x, y, color.Alpha{A: pixels[off]})
		}
	}

	return out, glyphatlas.Metrics{
		Left:    minX,
		Top:     minY,
		Right:   maxX,
		Bottom:  maxY,
		Advance: advance,
	}, nil
}

// Close releases every opened font and shuts down SDL_ttf.
func (r *SDLTTFRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.opened {
		f.Close()
	}
	r.opened = map[string]*ttf.Font{}
	if r.started {
		ttf.Quit()
		r.started = false
	}
}
