//go:build no_sdl_ttf
// +build no_sdl_ttf

package rasterfont

import (
	"fmt"
	"image"

	"github.com/kazikikaziki/misc-sub002/internal/glyphatlas"
)

// SDLTTFRegistry stub used when built with -tags no_sdl_ttf, so the module
// still compiles on hosts without libsdl2-ttf-dev installed. Callers should
// fall back to FaceRegistry in that build.
type SDLTTFRegistry struct{}

func NewSDLTTFRegistry() (*SDLTTFRegistry, error) {
	return nil, fmt.Errorf("rasterfont: SDL_ttf not available - install libsdl2-ttf-dev or use FaceRegistry")
}

func (r *SDLTTFRegistry) RegisterPath(fontID, path string) {}

func (r *SDLTTFRegistry) Rasterize(key glyphatlas.Key) (*image.Alpha, glyphatlas.Metrics, error) {
	return nil, glyphatlas.Metrics{}, fmt.Errorf("rasterfont: SDL_ttf not available")
}

func (r *SDLTTFRegistry) Close() {}
