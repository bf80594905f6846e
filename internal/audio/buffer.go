package audio

import "math"

// streamingBlockSeconds is how much audio each ring block of a streaming
// buffer holds (spec.md's STREAMING_SECONDS).
const streamingBlockSeconds = 2.0

// numStreamingBlocks is the fixed ring size for streaming playback.
const numStreamingBlocks = 2

// Buffer is the capability set both static and streaming playback sources
// implement; SoundMixer only ever talks to this interface.
type Buffer interface {
	Play() error
	Stop()
	IsPlaying() bool
	// Advance moves playback forward by dt seconds; the mixer calls this
	// from Update and from the streaming worker's tick.
	Advance(dt float64)
	Position() float64
	SetPosition(seconds float64) error
	Length() float64
	SetVolume(v float64)
	Volume() float64
	SetPitch(v float64)
	Pitch() float64
	SetPan(v float64)
	Pan() float64
	SetLooping(bool)
	Looping() bool
	Close() error
	// Render additively mixes this buffer's currently playing window into
	// dst (scaled by its own volume, clipped to int16 range), without
	// moving playback position. The streaming worker calls this once per
	// handle per tick to build the frame it hands to the output Device.
	Render(dst []int16)
}

// mixSample adds src*volume into *dst, clipping to the int16 range instead
// of wrapping on overflow.
func mixSample(dst *int16, src int16, volume float64) {
	sum := int32(*dst) + int32(float64(src)*volume)
	switch {
	case sum > 32767:
		sum = 32767
	case sum < -32768:
		sum = -32768
	}
	*dst = int16(sum)
}

// StaticBuffer holds a fully decoded sound resident in memory. Each buffer
// is decoded from its own Decoder; buffers are not pooled or shared between
// one-shots of the same asset.
type StaticBuffer struct {
	format      SampleFormat
	samples     []int16
	totalFrames int

	posFrames float64
	playing   bool
	looping   bool
	volume    float64
	pitch     float64
	pan       float64
}

// NewStaticBuffer drains dec fully into memory and closes it.
func NewStaticBuffer(dec Decoder) (*StaticBuffer, error) {
	defer dec.Close()
	format := dec.Format()
	chunk := make([]int16, 4096)
	var all []int16
	for {
		n, err := dec.ReadFrames(chunk)
		if n > 0 {
			all = append(all, chunk[:n]...)
		}
		if err != nil || n == 0 {
			break
		}
	}
	frames := len(all) / maxInt(format.Channels, 1)
	return &StaticBuffer{
		format:      format,
		samples:     all,
		totalFrames: frames,
		volume:      1,
		pitch:       1,
	}, nil
}

func (b *StaticBuffer) Play() error {
	b.posFrames = 0
	b.playing = true
	return nil
}

func (b *StaticBuffer) Stop() { b.playing = false }

func (b *StaticBuffer) IsPlaying() bool { return b.playing }

func (b *StaticBuffer) Advance(dt float64) {
	if !b.playing || b.totalFrames == 0 {
		return
	}
	b.posFrames += dt * float64(b.format.SampleRate) * b.pitch
	if b.posFrames >= float64(b.totalFrames) {
		if b.looping {
			b.posFrames = math.Mod(b.posFrames, float64(b.totalFrames))
		} else {
			b.posFrames = float64(b.totalFrames)
			b.playing = false
		}
	}
}

func (b *StaticBuffer) Position() float64 {
	if b.format.SampleRate == 0 {
		return 0
	}
	return b.posFrames / float64(b.format.SampleRate)
}

func (b *StaticBuffer) SetPosition(seconds float64) error {
	b.posFrames = seconds * float64(b.format.SampleRate)
	if b.posFrames < 0 {
		b.posFrames = 0
	}
	if b.posFrames > float64(b.totalFrames) {
		b.posFrames = float64(b.totalFrames)
	}
	return nil
}

func (b *StaticBuffer) Length() float64 {
	if b.format.SampleRate == 0 {
		return 0
	}
	return float64(b.totalFrames) / float64(b.format.SampleRate)
}

// Render mixes this buffer's audio starting at its current frame position
// into dst, wrapping at the sample array bounds when looping.
func (b *StaticBuffer) Render(dst []int16) {
	if !b.playing || len(b.samples) == 0 {
		return
	}
	ch := maxInt(b.format.Channels, 1)
	start := int(b.posFrames) * ch
	for i := range dst {
		idx := start + i
		if idx >= len(b.samples) {
			if !b.looping {
				break
			}
			idx %= len(b.samples)
		}
		mixSample(&dst[i], b.samples[idx], b.volume)
	}
}

func (b *StaticBuffer) SetVolume(v float64) { b.volume = v }
func (b *StaticBuffer) Volume() float64     { return b.volume }
func (b *StaticBuffer) SetPitch(v float64)  { b.pitch = v }
func (b *StaticBuffer) Pitch() float64      { return b.pitch }
func (b *StaticBuffer) SetPan(v float64)    { b.pan = v }
func (b *StaticBuffer) Pan() float64        { return b.pan }
func (b *StaticBuffer) SetLooping(v bool)   { b.looping = v }
func (b *StaticBuffer) Looping() bool       { return b.looping }
func (b *StaticBuffer) Close() error        { return nil }

// StreamingBuffer plays directly from a Decoder through a fixed two-block
// ring, refilling the block that just finished playing rather than holding
// the whole decode in memory.
type StreamingBuffer struct {
	dec       Decoder
	format    SampleFormat
	blockSize int // frames per block

	blockInputPos [numStreamingBlocks]int     // decoder frame offset of block's first sample
	blocks        [numStreamingBlocks][]int16 // decoded samples backing each block, for Render
	blockIndex    int                         // -1 when stopped
	posInBlock    float64
	stopNext      bool

	looping                bool
	loopStartFr, loopEndFr int

	playing bool
	volume  float64
	pitch   float64
	pan     float64
}

// NewStreamingBuffer binds a streaming buffer to dec, sized to
// streamingBlockSeconds of audio per block.
func NewStreamingBuffer(dec Decoder) *StreamingBuffer {
	format := dec.Format()
	return &StreamingBuffer{
		dec:        dec,
		format:     format,
		blockSize:  int(float64(format.SampleRate) * streamingBlockSeconds),
		blockIndex: -1,
		volume:     1,
		pitch:      1,
	}
}

func (b *StreamingBuffer) SetLoopRangeSeconds(start, end float64) {
	b.loopStartFr = int(start * float64(b.format.SampleRate))
	b.loopEndFr = int(end * float64(b.format.SampleRate))
}

// writeBlock records the current decoder position and reads one block's
// worth of frames; it loops the decode position if loop range is active and
// the stream has run dry. Returns frames actually read.
func (b *StreamingBuffer) writeBlock(index int) int {
	channels := maxInt(b.format.Channels, 1)
	b.blockInputPos[index] = b.dec.TellSamples() / channels

	buf := make([]int16, b.blockSize*channels)
	n, _ := b.dec.ReadFrames(buf)
	framesRead := n / channels
	if framesRead == 0 && b.looping && b.loopEndFr > b.loopStartFr {
		b.dec.SeekSamples(b.loopStartFr * channels)
		b.blockInputPos[index] = b.loopStartFr
		n, _ = b.dec.ReadFrames(buf)
		framesRead = n / channels
	}
	b.blocks[index] = buf[:framesRead*channels]
	return framesRead
}

func (b *StreamingBuffer) Play() error {
	b.blockIndex = 0
	b.stopNext = false
	b.writeBlock(0)
	b.writeBlock(1)
	b.posInBlock = 0
	b.playing = true
	return nil
}

func (b *StreamingBuffer) Stop() {
	b.playing = false
	b.blockIndex = -1
}

func (b *StreamingBuffer) IsPlaying() bool { return b.playing }

func (b *StreamingBuffer) Advance(dt float64) {
	if !b.playing || b.blockIndex < 0 {
		return
	}
	b.posInBlock += dt * float64(b.format.SampleRate) * b.pitch
	for b.posInBlock >= float64(b.blockSize) {
		b.posInBlock -= float64(b.blockSize)
		if b.stopNext {
			b.Stop()
			return
		}
		if n := b.writeBlock(b.blockIndex); n == 0 {
			b.stopNext = true
		}
		b.blockIndex = (b.blockIndex + 1) % numStreamingBlocks
	}
}

func (b *StreamingBuffer) Position() float64 {
	if b.blockIndex < 0 || b.format.SampleRate == 0 {
		return 0
	}
	frame := float64(b.blockInputPos[b.blockIndex]) + b.posInBlock
	return frame / float64(b.format.SampleRate)
}

func (b *StreamingBuffer) SetPosition(seconds float64) error {
	channels := maxInt(b.format.Channels, 1)
	frame := int(seconds * float64(b.format.SampleRate))
	if err := b.dec.SeekSamples(frame * channels); err != nil {
		return err
	}
	if b.playing {
		return b.Play() // refill both blocks from the new position
	}
	return nil
}

func (b *StreamingBuffer) Length() float64 {
	if b.format.SampleRate == 0 {
		return 0
	}
	total := b.dec.TotalSamples()
	if total < 0 {
		return -1
	}
	return float64(total/maxInt(b.format.Channels, 1)) / float64(b.format.SampleRate)
}

// Render mixes the live block's audio starting at posInBlock into dst. It
// never crosses a block boundary; a dst longer than the remaining span of
// the current block is only partially filled, the rest left for the tick
// that follows the next refill.
func (b *StreamingBuffer) Render(dst []int16) {
	if !b.playing || b.blockIndex < 0 {
		return
	}
	channels := maxInt(b.format.Channels, 1)
	block := b.blocks[b.blockIndex]
	start := int(b.posInBlock) * channels
	for i := range dst {
		idx := start + i
		if idx >= len(block) {
			break
		}
		mixSample(&dst[i], block[idx], b.volume)
	}
}

func (b *StreamingBuffer) SetVolume(v float64) { b.volume = v }
func (b *StreamingBuffer) Volume() float64     { return b.volume }
func (b *StreamingBuffer) SetPitch(v float64)  { b.pitch = v }
func (b *StreamingBuffer) Pitch() float64      { return b.pitch }
func (b *StreamingBuffer) SetPan(v float64)    { b.pan = v }
func (b *StreamingBuffer) Pan() float64        { return b.pan }
func (b *StreamingBuffer) SetLooping(v bool)   { b.looping = v }
func (b *StreamingBuffer) Looping() bool       { return b.looping }
func (b *StreamingBuffer) Close() error        { return b.dec.Close() }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
