package audio

// Device is the output sink a mixer renders queued PCM into. NullDevice is
// the default so the mixer and its tests run without any real audio
// hardware; SDLDevice (sdl_device.go) is the real backend.
type Device interface {
	QueueFrames(samples []int16) error
	QueuedBytes() uint32
	Close() error
}

// NullDevice discards everything queued to it.
type NullDevice struct{}

func (NullDevice) QueueFrames(samples []int16) error { return nil }
func (NullDevice) QueuedBytes() uint32               { return 0 }
func (NullDevice) Close() error                      { return nil }
