package debug

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Logger is the engine-wide sink every component logs through. Log calls
// hand entries to a buffered channel and return immediately; a single
// background goroutine owns the ring and is its only writer, so readers
// never contend with formatting work happening on some other goroutine.
type Logger struct {
	ring ring

	componentMu      sync.RWMutex
	componentEnabled map[Component]bool

	levelMu  sync.RWMutex
	minLevel LogLevel

	entryCh chan LogEntry
	done    chan struct{}
	wg      sync.WaitGroup
	dropped uint64
}

// allComponents lists every component a fresh logger recognizes; each
// starts disabled, since logging is opt-in per component.
var allComponents = []Component{
	ComponentAsset, ComponentChunk, ComponentZip, ComponentText,
	ComponentAtlas, ComponentAudio, ComponentLoop, ComponentAnim,
	ComponentSystem,
}

// NewLogger starts a logger with a ring of at least 100 entries and its
// draining goroutine.
func NewLogger(capacity int) *Logger {
	if capacity < 100 {
		capacity = 100
	}
	l := &Logger{
		ring:             newRing(capacity),
		componentEnabled: make(map[Component]bool, len(allComponents)),
		minLevel:         LogLevelInfo,
		entryCh:          make(chan LogEntry, 1000),
		done:             make(chan struct{}),
	}
	for _, c := range allComponents {
		l.componentEnabled[c] = false
	}
	l.wg.Add(1)
	go l.drain()
	return l
}

// drain consumes entryCh until told to stop, then flushes whatever is left
// queued before returning.
func (l *Logger) drain() {
	defer l.wg.Done()
	for {
		select {
		case e := <-l.entryCh:
			l.ring.push(e)
		case <-l.done:
			l.drainRemaining()
			return
		}
	}
}

func (l *Logger) drainRemaining() {
	for {
		select {
		case e := <-l.entryCh:
			l.ring.push(e)
		default:
			return
		}
	}
}

func (l *Logger) enabled(c Component) bool {
	l.componentMu.RLock()
	defer l.componentMu.RUnlock()
	return l.componentEnabled[c]
}

func (l *Logger) level() LogLevel {
	l.levelMu.RLock()
	defer l.levelMu.RUnlock()
	return l.minLevel
}

// Log records message under component at level, once component is enabled
// and level clears the logger's minimum. Delivery is asynchronous; a
// saturated channel drops the entry rather than blocking the caller, and
// the drop is counted, not silently lost.
func (l *Logger) Log(component Component, level LogLevel, message string, data map[string]interface{}) {
	if !l.enabled(component) || level > l.level() {
		return
	}
	entry := LogEntry{Timestamp: time.Now(), Component: component, Level: level, Message: message, Data: data}
	select {
	case l.entryCh <- entry:
	default:
		atomic.AddUint64(&l.dropped, 1)
	}
}

// Dropped reports how many entries have been discarded so far because the
// delivery channel was full.
func (l *Logger) Dropped() uint64 { return atomic.LoadUint64(&l.dropped) }

// Logf logs a formatted message.
func (l *Logger) Logf(component Component, level LogLevel, format string, args ...interface{}) {
	l.Log(component, level, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) LogAsset(level LogLevel, message string, data map[string]interface{}) {
	l.Log(ComponentAsset, level, message, data)
}

func (l *Logger) LogChunk(level LogLevel, message string, data map[string]interface{}) {
	l.Log(ComponentChunk, level, message, data)
}

func (l *Logger) LogZip(level LogLevel, message string, data map[string]interface{}) {
	l.Log(ComponentZip, level, message, data)
}

func (l *Logger) LogText(level LogLevel, message string, data map[string]interface{}) {
	l.Log(ComponentText, level, message, data)
}

func (l *Logger) LogAtlas(level LogLevel, message string, data map[string]interface{}) {
	l.Log(ComponentAtlas, level, message, data)
}

func (l *Logger) LogAudio(level LogLevel, message string, data map[string]interface{}) {
	l.Log(ComponentAudio, level, message, data)
}

func (l *Logger) LogLoop(level LogLevel, message string, data map[string]interface{}) {
	l.Log(ComponentLoop, level, message, data)
}

func (l *Logger) LogAnim(level LogLevel, message string, data map[string]interface{}) {
	l.Log(ComponentAnim, level, message, data)
}

func (l *Logger) LogSystem(level LogLevel, message string, data map[string]interface{}) {
	l.Log(ComponentSystem, level, message, data)
}

func (l *Logger) LogAssetf(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentAsset, level, format, args...)
}

func (l *Logger) LogChunkf(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentChunk, level, format, args...)
}

func (l *Logger) LogZipf(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentZip, level, format, args...)
}

func (l *Logger) LogTextf(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentText, level, format, args...)
}

func (l *Logger) LogAtlasf(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentAtlas, level, format, args...)
}

func (l *Logger) LogAudiof(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentAudio, level, format, args...)
}

func (l *Logger) LogLoopf(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentLoop, level, format, args...)
}

func (l *Logger) LogAnimf(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentAnim, level, format, args...)
}

func (l *Logger) LogSystemf(level LogLevel, format string, args ...interface{}) {
	l.Logf(ComponentSystem, level, format, args...)
}

// GetEntries returns every buffered entry, oldest first.
func (l *Logger) GetEntries() []LogEntry { return l.ring.snapshot() }

// GetRecentEntries returns at most the count most recent entries.
func (l *Logger) GetRecentEntries(count int) []LogEntry {
	all := l.ring.snapshot()
	if count >= len(all) {
		return all
	}
	return all[len(all)-count:]
}

// Clear discards every buffered entry without touching component/level
// settings or the drop counter.
func (l *Logger) Clear() { l.ring.reset() }

// SetComponentEnabled enables or disables logging for a component.
func (l *Logger) SetComponentEnabled(component Component, enabled bool) {
	l.componentMu.Lock()
	defer l.componentMu.Unlock()
	l.componentEnabled[component] = enabled
}

// IsComponentEnabled returns whether a component is enabled.
func (l *Logger) IsComponentEnabled(component Component) bool {
	return l.enabled(component)
}

// SetMinLevel sets the minimum log level.
func (l *Logger) SetMinLevel(level LogLevel) {
	l.levelMu.Lock()
	defer l.levelMu.Unlock()
	l.minLevel = level
}

// GetMinLevel returns the minimum log level.
func (l *Logger) GetMinLevel() LogLevel { return l.level() }

// Shutdown signals the drain goroutine to flush and stop, then waits for
// it. Log calls after Shutdown don't panic, but nothing drains entryCh
// anymore, so they stop reaching GetEntries.
func (l *Logger) Shutdown() {
	close(l.done)
	l.wg.Wait()
}
