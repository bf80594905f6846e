package debug

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// LogLevel is the severity of a log entry, ordered from least to most
// verbose so filtering is a single integer comparison.
type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarning
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

var logLevelNames = [...]string{"NONE", "ERROR", "WARNING", "INFO", "DEBUG", "TRACE"}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(logLevelNames) {
		return "UNKNOWN"
	}
	return logLevelNames[l]
}

// Component names the engine subsystem that produced a log entry.
type Component string

const (
	ComponentAsset  Component = "Asset"
	ComponentChunk  Component = "Chunk"
	ComponentZip    Component = "Zip"
	ComponentText   Component = "Text"
	ComponentAtlas  Component = "Atlas"
	ComponentAudio  Component = "Audio"
	ComponentLoop   Component = "Loop"
	ComponentAnim   Component = "Anim"
	ComponentSystem Component = "System"
)

// LogEntry is a single recorded log message, with optional structured data
// attached by the caller.
type LogEntry struct {
	Timestamp time.Time
	Component Component
	Level     LogLevel
	Message   string
	Data      map[string]interface{}
}

// Format renders the entry as a single line: timestamp, component, level,
// message, then any Data fields as sorted key=value pairs so output is
// stable across runs.
func (e *LogEntry) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s: %s", e.Timestamp.Format("15:04:05.000"), e.Component, e.Level, e.Message)
	if len(e.Data) == 0 {
		return b.String()
	}
	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteString(" {")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", k, e.Data[k])
	}
	b.WriteString("}")
	return b.String()
}
