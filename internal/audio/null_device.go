//go:build no_sdl_ttf
// +build no_sdl_ttf

package audio

import "errors"

// SDLDevice is unavailable in headless builds; use NullDevice instead.
type SDLDevice struct{}

func OpenSDLDevice(format SampleFormat) (*SDLDevice, error) {
	return nil, errors.New("audio: SDL device not available in this build")
}

func (d *SDLDevice) QueueFrames(samples []int16) error { return errors.New("audio: SDL device not available in this build") }
func (d *SDLDevice) QueuedBytes() uint32               { return 0 }
func (d *SDLDevice) Close() error                      { return nil }
