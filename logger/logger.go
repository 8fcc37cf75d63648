// Package logger is palo's thin, tag-based logging facade: every
// component logs through Log/Logf/Warn/Error with its own tag, and
// gets leveled, colourised output for free.
package logger

import (
	"fmt"
	"os"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

var (
	mu  sync.Mutex
	std = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
	})
)

// SetLevel adjusts the minimum severity that is emitted. Components
// default to Info.
func SetLevel(level charmlog.Level) {
	mu.Lock()
	defer mu.Unlock()
	std.SetLevel(level)
}

// Log records an informational message tagged with the emitting
// component, e.g. Log("mce", "task switch requested").
func Log(tag, msg string) {
	mu.Lock()
	defer mu.Unlock()
	std.Info(msg, "component", tag)
}

// Logf is the printf-style counterpart to Log.
func Logf(tag, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	std.Info(fmt.Sprintf(format, args...), "component", tag)
}

// Warn records a non-fatal problem: a dropped UDP frame, a recoverable
// filesystem inconsistency, and so on.
func Warn(tag, msg string) {
	mu.Lock()
	defer mu.Unlock()
	std.Warn(msg, "component", tag)
}

// Error records a fatal or near-fatal condition: a microcode error
// latch, a failed ROM load.
func Error(tag, msg string) {
	mu.Lock()
	defer mu.Unlock()
	std.Error(msg, "component", tag)
}
