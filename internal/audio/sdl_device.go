//go:build !no_sdl_ttf
// +build !no_sdl_ttf

package audio

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

// SDLDevice pushes mixed int16 PCM to a real output device via
// sdl.OpenAudioDevice/QueueAudio, matching the build-tag split used by the
// glyph rasterizer's SDL_ttf backend so headless builds never link SDL.
type SDLDevice struct {
	id     sdl.AudioDeviceID
	format SampleFormat
}

// OpenSDLDevice opens the default playback device at the given format.
func OpenSDLDevice(format SampleFormat) (*SDLDevice, error) {
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return nil, fmt.Errorf("audio: sdl.InitSubSystem: %w", err)
	}
	spec := sdl.AudioSpec{
		Freq:     int32(format.SampleRate),
		Format:   sdl.AUDIO_S16SYS,
		Channels: uint8(format.Channels),
		Samples:  1024,
	}
	id, err := sdl.OpenAudioDevice("", false, &spec, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("audio: sdl.OpenAudioDevice: %w", err)
	}
	sdl.PauseAudioDevice(id, false)
	return &SDLDevice{id: id, format: format}, nil
}

// QueueFrames enqueues interleaved int16 samples for playback.
func (d *SDLDevice) QueueFrames(samples []int16) error {
	return sdl.QueueAudio(d.id, int16ToBytes(samples))
}

// QueuedBytes reports how much buffered audio the device has yet to play,
// useful for pacing a mixer that renders ahead of real time.
func (d *SDLDevice) QueuedBytes() uint32 {
	return sdl.GetQueuedAudioSize(d.id)
}

func (d *SDLDevice) Close() error {
	sdl.CloseAudioDevice(d.id)
	return nil
}

func int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		out[2*i] = byte(s)
		out[2*i+1] = byte(s >> 8)
	}
	return out
}
