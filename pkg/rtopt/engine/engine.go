// Package engine inspects the audio engines the optimizer cares about:
// JACK as the primary engine and PipeWire as the secondary one.
//
// Nothing here mutates engine configuration. Settings are parsed from
// the engine's own config files and used for display and for buffer
// recommendations only.
package engine

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mkessler/rtopt/pkg/rtopt/proc"
)

// Process names of the supported engines.
const (
	JackProcess     = "jackd"
	JackDBusProcess = "jackdbus"
	PipeWireProcess = "pipewire"
)

// Status describes which engines are currently running.
type Status struct {
	JackRunning     bool
	PipeWireRunning bool
}

// Probe checks the process table for known engines.
func Probe(lookup proc.Lookup) Status {
	return Status{
		JackRunning:     proc.Running(lookup, JackProcess) || proc.Running(lookup, JackDBusProcess),
		PipeWireRunning: proc.Running(lookup, PipeWireProcess),
	}
}

// Settings are the engine buffer settings relevant for xrun analysis.
type Settings struct {
	// Frames is the buffer size in frames per period.
	Frames uint

	// Rate is the sample rate in Hz.
	Rate uint

	// Periods is the number of periods per buffer.
	Periods uint
}

// Known reports whether any setting was actually parsed.
func (s Settings) Known() bool {
	return s.Frames > 0 || s.Rate > 0
}

// String formats settings the way the tray and the live monitor show
// them, e.g. "256 frames @ 48000 Hz (2 periods)".
func (s Settings) String() string {
	if !s.Known() {
		return "unknown"
	}
	var b strings.Builder
	b.WriteString(strconv.FormatUint(uint64(s.Frames), 10))
	b.WriteString(" frames")
	if s.Rate > 0 {
		b.WriteString(" @ ")
		b.WriteString(strconv.FormatUint(uint64(s.Rate), 10))
		b.WriteString(" Hz")
	}
	if s.Periods > 0 {
		b.WriteString(" (")
		b.WriteString(strconv.FormatUint(uint64(s.Periods), 10))
		b.WriteString(" periods)")
	}
	return b.String()
}

// LatencyMillis returns the one-way buffer latency in milliseconds, or
// 0 when the settings are unknown.
func (s Settings) LatencyMillis() float64 {
	if s.Frames == 0 || s.Rate == 0 {
		return 0
	}
	periods := s.Periods
	if periods == 0 {
		periods = 2
	}
	return float64(s.Frames*periods) / float64(s.Rate) * 1000
}

// LoadSettings parses JACK settings from the usual config locations:
// ~/.jackdrc (command line form) first, then the jackdbus conf. A
// missing or unparseable file yields zero Settings, not an error.
func LoadSettings() Settings {
	home, err := os.UserHomeDir()
	if err != nil {
		return Settings{}
	}

	if s := settingsFromJackdrc(filepath.Join(home, ".jackdrc")); s.Known() {
		return s
	}
	return settingsFromJackdrc(filepath.Join(home, ".config", "jack", "conf.xml"))
}

// settingsFromJackdrc extracts -p/-r/-n values from a jackd command
// line (or any text containing them).
func settingsFromJackdrc(path string) Settings {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}
	}
	return ParseCommandLine(string(data))
}

// ParseCommandLine extracts buffer settings from a jackd invocation
// such as "/usr/bin/jackd -dalsa -dhw:M4 -r48000 -p256 -n2".
func ParseCommandLine(cmdline string) Settings {
	var s Settings
	for _, field := range strings.Fields(cmdline) {
		switch {
		case strings.HasPrefix(field, "-p"):
			s.Frames = parseUintSuffix(field[2:])
		case strings.HasPrefix(field, "--period="):
			s.Frames = parseUintSuffix(field[len("--period="):])
		case strings.HasPrefix(field, "-r"):
			s.Rate = parseUintSuffix(field[2:])
		case strings.HasPrefix(field, "--rate="):
			s.Rate = parseUintSuffix(field[len("--rate="):])
		case strings.HasPrefix(field, "-n"):
			s.Periods = parseUintSuffix(field[2:])
		case strings.HasPrefix(field, "--nperiods="):
			s.Periods = parseUintSuffix(field[len("--nperiods="):])
		}
	}
	return s
}

func parseUintSuffix(s string) uint {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}
