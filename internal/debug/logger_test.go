package debug

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerDropsDisabledComponents(t *testing.T) {
	l := NewLogger(100)
	defer l.Shutdown()

	l.LogAsset(LogLevelError, "should not appear", nil)
	time.Sleep(10 * time.Millisecond)

	assert.Empty(t, l.GetEntries())
}

func TestLoggerRecordsEnabledComponentAboveMinLevel(t *testing.T) {
	l := NewLogger(100)
	defer l.Shutdown()

	l.SetComponentEnabled(ComponentAudio, true)
	l.SetMinLevel(LogLevelWarning)

	l.LogAudio(LogLevelDebug, "filtered by level", nil)
	l.LogAudiof(LogLevelError, "boom %d", 7)
	time.Sleep(10 * time.Millisecond)

	entries := l.GetEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "boom 7", entries[0].Message)
	assert.Equal(t, ComponentAudio, entries[0].Component)
}

func TestLoggerRingWrapsAtCapacity(t *testing.T) {
	l := NewLogger(100) // NewLogger enforces a 100-entry floor
	defer l.Shutdown()
	l.SetComponentEnabled(ComponentSystem, true)

	for i := 0; i < 150; i++ {
		l.LogSystemf(LogLevelInfo, "entry-%d", i)
	}
	time.Sleep(20 * time.Millisecond)

	entries := l.GetEntries()
	require.Len(t, entries, 100)
	assert.Equal(t, "entry-50", entries[0].Message)
	assert.Equal(t, "entry-149", entries[len(entries)-1].Message)
}

func TestLoggerClearResetsRingNotSettings(t *testing.T) {
	l := NewLogger(100)
	defer l.Shutdown()
	l.SetComponentEnabled(ComponentSystem, true)
	l.LogSystem(LogLevelInfo, "hello", nil)
	time.Sleep(10 * time.Millisecond)
	require.NotEmpty(t, l.GetEntries())

	l.Clear()
	assert.Empty(t, l.GetEntries())
	assert.True(t, l.IsComponentEnabled(ComponentSystem))
}

func TestRingOverwritesOldestEntryWhenFull(t *testing.T) {
	r := newRing(3)
	r.push(LogEntry{Message: "a"})
	r.push(LogEntry{Message: "b"})
	r.push(LogEntry{Message: "c"})
	r.push(LogEntry{Message: "d"})

	got := r.snapshot()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"b", "c", "d"}, []string{got[0].Message, got[1].Message, got[2].Message})
}
