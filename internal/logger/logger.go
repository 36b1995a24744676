// Package logger provides leveled logging for archisync.
// Debug, Info, Warn and Section print only when verbose mode is enabled via
// the --verbose flag; Error always prints. Output goes to stderr so it never
// mixes with command output.
//
// Long-running commands (serve, watch) switch on timestamps so interleaved
// pipeline runs can be told apart. Messages from one component can be
// tagged with For:
//
//	log := logger.For("sync", "invoices")
//	log.Warn("page %d has no table", 12) // [WARN] sync[invoices]: page 12 has no table
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

var (
	mu         sync.RWMutex
	verbose    bool
	timestamps bool
	output     io.Writer = os.Stderr
	now                  = time.Now
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetTimestamps prefixes every line with the local wall-clock time.
func SetTimestamps(on bool) {
	mu.Lock()
	defer mu.Unlock()
	timestamps = on
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	emit("DEBUG", false, "", format, args)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	emit("INFO", false, "", format, args)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	emit("WARN", false, "", format, args)
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	emit("ERROR", true, "", format, args)
}

// Scoped tags every message with the component that produced it.
type Scoped struct {
	prefix string
}

// For returns a logger whose messages start with "component: " or, when
// keys are given, "component[key1,key2]: ".
func For(component string, keys ...string) Scoped {
	prefix := component
	if len(keys) > 0 {
		prefix += "[" + strings.Join(keys, ",") + "]"
	}
	return Scoped{prefix: prefix + ": "}
}

// Debug prints a tagged message if verbose mode is enabled.
func (s Scoped) Debug(format string, args ...any) {
	emit("DEBUG", false, s.prefix, format, args)
}

// Info prints a tagged message if verbose mode is enabled.
func (s Scoped) Info(format string, args ...any) {
	emit("INFO", false, s.prefix, format, args)
}

// Warn prints a tagged message if verbose mode is enabled.
func (s Scoped) Warn(format string, args ...any) {
	emit("WARN", false, s.prefix, format, args)
}

// Error prints a tagged message regardless of verbose mode.
func (s Scoped) Error(format string, args ...any) {
	emit("ERROR", true, s.prefix, format, args)
}

func emit(level string, always bool, prefix, format string, args []any) {
	mu.RLock()
	defer mu.RUnlock()
	if !always && !verbose {
		return
	}
	var b strings.Builder
	if timestamps {
		b.WriteString(now().Format(timestampLayout))
		b.WriteByte(' ')
	}
	b.WriteString("[" + level + "] ")
	b.WriteString(prefix)
	fmt.Fprintf(&b, format, args...)
	b.WriteByte('\n')
	_, _ = io.WriteString(output, b.String())
}
