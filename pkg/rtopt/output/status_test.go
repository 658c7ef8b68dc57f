package output_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mkessler/rtopt/pkg/rtopt/detect"
	"github.com/mkessler/rtopt/pkg/rtopt/engine"
	"github.com/mkessler/rtopt/pkg/rtopt/history"
	"github.com/mkessler/rtopt/pkg/rtopt/monitor"
	"github.com/mkessler/rtopt/pkg/rtopt/output"
	"github.com/mkessler/rtopt/pkg/rtopt/state"
	"github.com/mkessler/rtopt/pkg/rtopt/xrun"
)

func sampleSnapshot() monitor.Snapshot {
	return monitor.Snapshot{
		Time:            time.Now(),
		State:           state.Optimized,
		DeviceConnected: true,
		Devices: []detect.Device{
			{CardID: "M4", Path: "proc/asound/card1", MatchedBy: detect.HeuristicUSBID},
		},
		Engine:    engine.Status{JackRunning: true},
		Settings:  engine.Settings{Frames: 256, Rate: 48000, Periods: 2},
		LiveXruns: 2,
		System:    xrun.SystemStats{Recent: 1, Severe: 0, EngineMessages: 4},
		Severity:  xrun.SeverityMild,
	}
}

func TestRenderStatus(t *testing.T) {
	out := output.RenderStatus(sampleSnapshot())

	assert.Contains(t, out, "State:")
	assert.Contains(t, out, "optimized")
	assert.Contains(t, out, "Device:")
	assert.Contains(t, out, "connected")
	assert.Contains(t, out, "M4")
	assert.Contains(t, out, "Engine:")
	assert.Contains(t, out, "JACK active")
	assert.Contains(t, out, "256 frames @ 48000 Hz (2 periods)")
	assert.Contains(t, out, "Xruns:")
	assert.Contains(t, out, "2 recent")
	assert.Contains(t, out, "severity mild")
}

func TestRenderStatusDisconnected(t *testing.T) {
	snap := monitor.Snapshot{
		State:    state.Standard,
		Severity: xrun.SeverityPerfect,
	}
	out := output.RenderStatus(snap)

	assert.Contains(t, out, "standard")
	assert.Contains(t, out, "not connected")
	assert.Contains(t, out, "inactive")
	assert.Contains(t, out, "0 recent")
}

func TestRenderDetailed(t *testing.T) {
	records := []history.Record{
		{Time: time.Now().Add(-2 * time.Minute), Event: "xrun-check", Total: 7, Severe: 1, Severity: "severe"},
		{Time: time.Now().Add(-time.Hour), Event: "applied", Severity: "perfect"},
	}

	out := output.RenderDetailed(sampleSnapshot(), records)

	assert.Contains(t, out, "System (5m):")
	assert.Contains(t, out, "1 audio errors, 0 severe, 4 engine messages")
	assert.Contains(t, out, "device M4")
	assert.Contains(t, out, "Recent activity:")
	assert.Contains(t, out, "xrun-check")
	assert.Contains(t, out, "total=7 severe=1 severe")
	assert.Contains(t, out, "applied")
}

func TestRenderDetailedNoHistory(t *testing.T) {
	out := output.RenderDetailed(sampleSnapshot(), nil)
	assert.False(t, strings.Contains(out, "Recent activity:"),
		"history header rendered with no records")
}
