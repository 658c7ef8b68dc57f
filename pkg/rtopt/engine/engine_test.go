package engine_test

import (
	"math"
	"testing"

	"github.com/mkessler/rtopt/pkg/rtopt/engine"
	"github.com/mkessler/rtopt/pkg/rtopt/proc"
)

func TestProbe(t *testing.T) {
	lookup := proc.Static{
		"jackd":    {1201},
		"pipewire": {980},
	}

	status := engine.Probe(lookup)
	if !status.JackRunning {
		t.Error("JackRunning = false, want true")
	}
	if !status.PipeWireRunning {
		t.Error("PipeWireRunning = false, want true")
	}

	status = engine.Probe(proc.Static{"jackdbus": {1300}})
	if !status.JackRunning {
		t.Error("jackdbus should count as JACK running")
	}
	if status.PipeWireRunning {
		t.Error("PipeWireRunning = true, want false")
	}

	status = engine.Probe(proc.Static{})
	if status.JackRunning || status.PipeWireRunning {
		t.Error("empty process table reported an engine running")
	}
}

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		name    string
		cmdline string
		want    engine.Settings
	}{
		{
			"short flags",
			"/usr/bin/jackd -dalsa -dhw:M4 -r48000 -p256 -n2",
			engine.Settings{Frames: 256, Rate: 48000, Periods: 2},
		},
		{
			"long flags",
			"jackd -d alsa --rate=96000 --period=128 --nperiods=3",
			engine.Settings{Frames: 128, Rate: 96000, Periods: 3},
		},
		{
			"partial settings",
			"jackd -dalsa -p512",
			engine.Settings{Frames: 512},
		},
		{
			"no settings",
			"pipewire --daemonize",
			engine.Settings{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.ParseCommandLine(tt.cmdline)
			if got != tt.want {
				t.Errorf("ParseCommandLine(%q) = %+v, want %+v", tt.cmdline, got, tt.want)
			}
		})
	}
}

func TestSettingsString(t *testing.T) {
	s := engine.Settings{Frames: 256, Rate: 48000, Periods: 2}
	want := "256 frames @ 48000 Hz (2 periods)"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	if got := (engine.Settings{}).String(); got != "unknown" {
		t.Errorf("zero Settings String() = %q, want unknown", got)
	}

	if got := (engine.Settings{Frames: 128}).String(); got != "128 frames" {
		t.Errorf("frames-only String() = %q", got)
	}
}

func TestSettingsKnown(t *testing.T) {
	if (engine.Settings{}).Known() {
		t.Error("zero Settings reported Known")
	}
	if !(engine.Settings{Frames: 64}).Known() {
		t.Error("Settings with frames not Known")
	}
}

func TestLatencyMillis(t *testing.T) {
	s := engine.Settings{Frames: 256, Rate: 48000, Periods: 2}
	want := float64(256*2) / 48000 * 1000
	if got := s.LatencyMillis(); math.Abs(got-want) > 1e-9 {
		t.Errorf("LatencyMillis() = %v, want %v", got, want)
	}

	// Unknown periods defaults to 2.
	s = engine.Settings{Frames: 256, Rate: 48000}
	if got := s.LatencyMillis(); math.Abs(got-want) > 1e-9 {
		t.Errorf("LatencyMillis() with default periods = %v, want %v", got, want)
	}

	if got := (engine.Settings{}).LatencyMillis(); got != 0 {
		t.Errorf("zero Settings latency = %v, want 0", got)
	}
}
