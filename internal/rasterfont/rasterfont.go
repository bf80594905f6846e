// Package rasterfont provides glyphatlas.Rasterizer implementations: a pure
// Go fallback built on golang.org/x/image/font, and an optional backend
// using the host's installed TrueType fonts via go-sdl2/ttf.
package rasterfont

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/kazikikaziki/misc-sub002/internal/glyphatlas"
)

// FaceRegistry rasterises glyphs using registered golang.org/x/image/font.Face
// values, keyed by font id. It ignores requested point size (faces are
// pre-baked at a fixed size, as basicfont.Face7x13 is); callers that need
// true scalable sizing should register a SDLTTFRegistry backend instead.
type FaceRegistry struct {
	mu    sync.RWMutex
	faces map[string]font.Face
}

// NewFaceRegistry returns a registry with "default" bound to a built-in
// fixed-width bitmap face, so callers always have something to rasterise
// with even before registering real fonts.
func NewFaceRegistry() *FaceRegistry {
	r := &FaceRegistry{faces: make(map[string]font.Face)}
	r.Register("default", basicfont.Face7x13)
	return r
}

// Register binds fontID to a face. Subsequent lookups for that id use it.
func (r *FaceRegistry) Register(fontID string, face font.Face) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faces[fontID] = face
}

func (r *FaceRegistry) lookup(fontID string) (font.Face, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.faces[fontID]
	return f, ok
}

// Rasterize implements glyphatlas.Rasterizer.
func (r *FaceRegistry) Rasterize(key glyphatlas.Key) (*image.Alpha, glyphatlas.Metrics, error) {
	face, ok := r.lookup(key.FontID)
	if !ok {
		face, ok = r.lookup("default")
		if !ok {
			return nil, glyphatlas.Metrics{}, fmt.Errorf("rasterfont: no face registered for %q and no default", key.FontID)
		}
	}

	dr, mask, maskp, advance, ok := face.Glyph(fixed.P(0, 0), key.Codepoint)
	if !ok || dr.Empty() {
		// Glyph not present in the face: emit a blank 1x1 bitmap with
		// zero-area metrics as a placeholder so the
		// atlas still has something to cache, matching the "empty glyphs are
		// skipped at mesh emission" behaviour rather than erroring the box.
		return image.NewAlpha(image.Rect(0, 0, 1, 1)), glyphatlas.Metrics{Advance: advance.Ceil()}, nil
	}

	out := image.NewAlpha(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	for y := dr.Min.Y; y < dr.Max.Y; y++ {
		for x := dr.Min.X; x < dr.Max.X; x++ {
			_, _, _, a := mask.At(x-dr.Min.X+maskp.X, y-dr.Min.Y+maskp.Y).RGBA()
			out.SetAlpha(x-dr.Min.X, y-dr.Min.Y, color.Alpha{A: uint8(a >> 8)})
		}
	}

	metrics := glyphatlas.Metrics{
		Left:    dr.Min.X,
		Top:     dr.Min.Y,
		Right:   dr.Max.X,
		Bottom:  dr.Max.Y,
		Advance: advance.Ceil(),
	}
	return out, metrics, nil
}

// Kern returns the kerning advance (in pixels, rounded to the nearest whole
// pixel) between two adjacent runes under fontID, falling
// back to 0 if the font isn't registered or has no kern table entry.
func (r *FaceRegistry) Kern(fontID string, prev, cur rune) int {
	face, ok := r.lookup(fontID)
	if !ok {
		return 0
	}
	return face.Kern(prev, cur).Round()
}
