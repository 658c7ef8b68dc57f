// Package tray writes the advisory side-channel consumed by the
// desktop tray application.
//
// The format is the key=value file the tray has always read; keys and
// values here must stay compatible with it. Writes are atomic so the
// tray never observes a half-written record. The channel is optional:
// an empty path disables it entirely.
package tray

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Record is the structured state published to the tray.
type Record struct {
	// State is the tray display state: "optimized", "connected",
	// "warning", or "disconnected".
	State string

	// DeviceConnected reports interface presence.
	DeviceConnected bool

	// EngineActive reports whether the primary audio engine runs.
	EngineActive bool

	// EngineSettings is the formatted engine settings line.
	EngineSettings string

	// RecentXruns is the xrun count over the last check window.
	RecentXruns uint

	// RunID identifies the daemon run that produced the record.
	RunID string

	// Timestamp is when the record was produced.
	Timestamp time.Time
}

// Writer publishes records to the tray state file.
type Writer struct {
	// Path is the state file. Empty disables publishing.
	Path string
}

// NewWriter returns a Writer for path.
func NewWriter(path string) *Writer {
	return &Writer{Path: path}
}

// Enabled reports whether the side-channel is configured.
func (w *Writer) Enabled() bool {
	return w != nil && w.Path != ""
}

// Update atomically rewrites the state file. Disabled writers are a
// no-op returning nil.
func (w *Writer) Update(r Record) error {
	if !w.Enabled() {
		return nil
	}

	engineState := "inactive"
	if r.EngineActive {
		engineState = "active"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "state=%s\n", r.State)
	fmt.Fprintf(&b, "device=%s\n", deviceValue(r.DeviceConnected))
	fmt.Fprintf(&b, "jack=%s\n", engineState)
	fmt.Fprintf(&b, "jack_settings=%s\n", r.EngineSettings)
	fmt.Fprintf(&b, "xruns_30s=%s\n", strconv.FormatUint(uint64(r.RecentXruns), 10))
	if r.RunID != "" {
		fmt.Fprintf(&b, "run=%s\n", r.RunID)
	}
	fmt.Fprintf(&b, "updated=%s\n", r.Timestamp.Format(time.RFC3339))

	if err := os.MkdirAll(filepath.Dir(w.Path), 0755); err != nil {
		return err
	}
	tmp := w.Path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0644); err != nil {
		return err
	}
	return os.Rename(tmp, w.Path)
}

func deviceValue(connected bool) string {
	if connected {
		return "connected"
	}
	return "disconnected"
}

// Read parses a state file back into a key-value map. The tray itself
// is the usual consumer; this reader exists for the status command and
// tests.
func Read(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if key, value, ok := strings.Cut(line, "="); ok {
			values[key] = value
		}
	}
	return values, nil
}
