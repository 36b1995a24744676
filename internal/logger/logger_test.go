package logger

import (
	"bytes"
	"io"
	"os"
	"sync"
	"testing"
	"time"
)

// capture redirects output into a buffer and restores global state afterwards.
func capture(t *testing.T, verboseOn bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseOn)
	t.Cleanup(func() {
		SetVerbose(false)
		SetTimestamps(false)
		SetOutput(os.Stderr)
		now = time.Now
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)

	if IsVerbose() {
		t.Error("expected verbose to be false initially")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false after SetVerbose(false)")
	}
}

func TestLevels_WhenVerbose(t *testing.T) {
	tests := []struct {
		name string
		log  func()
		want string
	}{
		{"debug", func() { Debug("cycle %d row %d", 3, 7) }, "[DEBUG] cycle 3 row 7\n"},
		{"info", func() { Info("synced %d records", 42) }, "[INFO] synced 42 records\n"},
		{"warn", func() { Warn("export unchanged") }, "[WARN] export unchanged\n"},
		{"section", func() { Section("Orders") }, "\n=== Orders ===\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, true)
			tt.log()
			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLevels_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("hidden")
	Info("hidden")
	Warn("hidden")
	Section("hidden")
	For("sync", "orders").Warn("hidden")

	if buf.Len() > 0 {
		t.Errorf("expected no output when verbose is disabled, got %q", buf.String())
	}
}

func TestError_AlwaysPrints(t *testing.T) {
	buf := capture(t, false)

	Error("sync %s failed: %v", "invoices", "page 12 has no table")

	if got := buf.String(); got != "[ERROR] sync invoices failed: page 12 has no table\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestFor_Prefix(t *testing.T) {
	tests := []struct {
		name   string
		scoped Scoped
		want   string
	}{
		{"component only", For("watch"), "[INFO] watch: ready\n"},
		{"one key", For("sync", "orders"), "[INFO] sync[orders]: ready\n"},
		{"two keys", For("match", "orders", "delivery_notes"), "[INFO] match[orders,delivery_notes]: ready\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, true)
			tt.scoped.Info("ready")
			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScoped_ErrorAlwaysPrints(t *testing.T) {
	buf := capture(t, false)

	For("scheduler").Error("task %s failed", "sync:prices")

	if got := buf.String(); got != "[ERROR] scheduler: task sync:prices failed\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestSetTimestamps(t *testing.T) {
	buf := capture(t, true)
	now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 0, 0, time.Local) }
	SetTimestamps(true)

	For("watch").Info("change detected")

	if got := buf.String(); got != "2024-03-09 14:05:00 [INFO] watch: change detected\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, false)
	SetOutput(io.Discard)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetVerbose(true)
			For("sync").Debug("concurrent %d", i)
			IsVerbose()
			SetVerbose(false)
		}()
	}
	wg.Wait()
}
