package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticBufferLoopsOnOverrun(t *testing.T) {
	buf, err := NewStaticBuffer(newSineDecoder(1))
	require.NoError(t, err)
	buf.SetLooping(true)
	require.NoError(t, buf.Play())

	buf.Advance(1.5) // past the 1-second buffer once
	assert.True(t, buf.IsPlaying())
	assert.Less(t, buf.Position(), 1.0)
}

func TestStaticBufferStopsAtEndWithoutLooping(t *testing.T) {
	buf, err := NewStaticBuffer(newSineDecoder(1))
	require.NoError(t, err)
	require.NoError(t, buf.Play())

	buf.Advance(2)
	assert.False(t, buf.IsPlaying())
}

func TestStreamingBufferRefillsAcrossBlockBoundary(t *testing.T) {
	dec := newSineDecoder(10)
	buf := NewStreamingBuffer(dec)
	require.NoError(t, buf.Play())

	// Advance past the block size (2s) so the ring refills block 0.
	buf.Advance(streamingBlockSeconds + 0.1)
	assert.True(t, buf.IsPlaying())
	assert.InDelta(t, streamingBlockSeconds+0.1, buf.Position(), 0.05)
}

func TestStaticBufferRenderMixesScaledSamplesAdditively(t *testing.T) {
	buf, err := NewStaticBuffer(newSineDecoder(1))
	require.NoError(t, err)
	buf.SetVolume(2)
	require.NoError(t, buf.Play())

	dst := make([]int16, 4)
	dst[0] = 10
	buf.Render(dst)

	assert.Equal(t, int16(10), dst[0]) // sample 0 is 0, so 10 + 0*2 stays 10
	assert.Equal(t, int16(2), dst[1])  // sample 1 is 1, scaled by volume 2
}

func TestStaticBufferRenderIsNoOpWhenStopped(t *testing.T) {
	buf, err := NewStaticBuffer(newSineDecoder(1))
	require.NoError(t, err)

	dst := make([]int16, 4)
	buf.Render(dst)
	assert.Equal(t, []int16{0, 0, 0, 0}, dst)
}

func TestStreamingBufferRenderReadsCurrentBlock(t *testing.T) {
	dec := newSineDecoder(10)
	buf := NewStreamingBuffer(dec)
	require.NoError(t, buf.Play())

	dst := make([]int16, 4)
	buf.Render(dst)
	assert.Equal(t, int16(1), dst[1])
}

func TestStreamingBufferStopsWhenDecoderRunsDry(t *testing.T) {
	dec := newSineDecoder(streamingBlockSeconds * 1.5)
	buf := NewStreamingBuffer(dec)
	require.NoError(t, buf.Play())

	for i := 0; i < 10; i++ {
		buf.Advance(streamingBlockSeconds)
	}
	assert.False(t, buf.IsPlaying())
}
