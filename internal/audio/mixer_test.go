package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sineDecoder synthesizes a fixed-length ramp (each sample's value is its
// own sample index) so tests don't depend on a real WAV fixture on disk.
type sineDecoder struct {
	format SampleFormat
	total  int
	pos    int
}

func newSineDecoder(seconds float64) *sineDecoder {
	format := SampleFormat{Channels: 1, SampleRate: 1000}
	return &sineDecoder{format: format, total: int(seconds * float64(format.SampleRate))}
}

func (d *sineDecoder) Format() SampleFormat { return d.format }

func (d *sineDecoder) ReadFrames(out []int16) (int, error) {
	remaining := d.total - d.pos
	if remaining <= 0 {
		return 0, nil
	}
	n := len(out)
	if n > remaining {
		n = remaining
	}
	for i := 0; i < n; i++ {
		out[i] = int16(d.pos + i)
	}
	d.pos += n
	return n, nil
}

func (d *sineDecoder) SeekSamples(pos int) error {
	if pos < 0 {
		pos = 0
	}
	if pos > d.total {
		pos = d.total
	}
	d.pos = pos
	return nil
}

func (d *sineDecoder) TellSamples() int  { return d.pos }
func (d *sineDecoder) TotalSamples() int { return d.total }
func (d *sineDecoder) Close() error      { return nil }

func TestGainLawSilencesOnMasterMute(t *testing.T) {
	m := NewSoundMixer(nil)
	id, err := m.PlayOneShot(newSineDecoder(1), DefaultGroup)
	require.NoError(t, err)

	m.SetMasterMute(true)
	m.Update(0)

	h := m.handles[id]
	assert.Equal(t, 0.0, m.effectiveVolume(h))
}

func TestGainLawSoloSilencesOtherGroups(t *testing.T) {
	m := NewSoundMixer(nil)
	music := m.AddGroup("music")
	sfx := m.AddGroup("sfx")

	musicID, err := m.PlayOneShot(newSineDecoder(1), music)
	require.NoError(t, err)
	sfxID, err := m.PlayOneShot(newSineDecoder(1), sfx)
	require.NoError(t, err)

	m.SetGroupSolo(music, true)

	musicH := m.handles[musicID]
	sfxH := m.handles[sfxID]
	assert.Greater(t, m.effectiveVolume(musicH), 0.0)
	assert.Equal(t, 0.0, m.effectiveVolume(sfxH))
}

func TestGainLawMultipliesAllStages(t *testing.T) {
	m := NewSoundMixer(nil)
	grp := m.AddGroup("voice")
	id, err := m.PlayOneShot(newSineDecoder(1), grp)
	require.NoError(t, err)

	m.SetMasterVolume(0.5)
	m.SetGroupMasterVolume(grp, 0.5)
	m.SetGroupVolume(grp, 0.5)
	require.NoError(t, m.SetVolume(id, 0.5))

	h := m.handles[id]
	assert.InDelta(t, 0.0625, m.effectiveVolume(h), 1e-9)
}

func TestOneShotHandleIsReapedAfterItFinishes(t *testing.T) {
	m := NewSoundMixer(nil)
	id, err := m.PlayOneShot(newSineDecoder(0.01), DefaultGroup)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		m.Update(0.01)
	}

	assert.False(t, m.IsPlaying(id))
	if _, ok := m.handles[id]; ok {
		t.Fatalf("expected one-shot handle %d to be reaped after finishing", id)
	}
}

func TestSeekDuringPlayRefillsStreamingBlocks(t *testing.T) {
	dec := newSineDecoder(10)
	buf := NewStreamingBuffer(dec)
	require.NoError(t, buf.Play())

	require.NoError(t, buf.SetPosition(5))
	assert.InDelta(t, 5.0, buf.Position(), 0.01)
	assert.True(t, buf.IsPlaying())
}

// fakeDevice records every frame queued to it instead of touching real
// audio hardware.
type fakeDevice struct {
	queued [][]int16
	closed bool
}

func (d *fakeDevice) QueueFrames(samples []int16) error {
	cp := make([]int16, len(samples))
	copy(cp, samples)
	d.queued = append(d.queued, cp)
	return nil
}
func (d *fakeDevice) QueuedBytes() uint32 { return 0 }
func (d *fakeDevice) Close() error        { d.closed = true; return nil }

func TestTickRendersMixedPCMToDevice(t *testing.T) {
	m := NewSoundMixer(nil)
	m.SetOutputFormat(SampleFormat{Channels: 1, SampleRate: 1000})
	dev := &fakeDevice{}
	m.SetDevice(dev)

	id, err := m.PlayOneShot(newSineDecoder(1), DefaultGroup)
	require.NoError(t, err)
	require.NoError(t, m.SetVolume(id, 1))
	m.Update(0)

	m.tick(0.1) // a tenth of a second at 1000Hz = 100 frames

	require.Len(t, dev.queued, 1)
	assert.Len(t, dev.queued[0], 100)
	assert.NotZero(t, dev.queued[0][1]) // sineDecoder writes pos+i as the sample value
}

func TestStartStopStreamingWorkerIsIdempotentAndJoins(t *testing.T) {
	m := NewSoundMixer(nil)
	m.SetDevice(&fakeDevice{})

	m.StartStreamingWorker()
	m.StartStreamingWorker() // no-op while already running

	m.StopStreamingWorker()
	m.StopStreamingWorker() // no-op once stopped
}

func TestFadeToZeroStopsHandleOnFinish(t *testing.T) {
	m := NewSoundMixer(nil)
	id, err := m.PlayOneShot(newSineDecoder(10), DefaultGroup)
	require.NoError(t, err)

	require.NoError(t, m.Stop(id, 1, 10)) // 1 second fade at 10fps = 10 frames
	for i := 0; i < 10; i++ {
		m.Update(0.1)
	}

	assert.False(t, m.IsPlaying(id))
}
