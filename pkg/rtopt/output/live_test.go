package output_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mkessler/rtopt/pkg/rtopt/engine"
	"github.com/mkessler/rtopt/pkg/rtopt/monitor"
	"github.com/mkessler/rtopt/pkg/rtopt/output"
)

func sampleFrame() monitor.LiveFrame {
	return monitor.LiveFrame{
		Time:        time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC),
		NewXruns:    2,
		Rate:        3,
		Total:       9,
		MaxInterval: 4,
		Elapsed:     95 * time.Second,
		Settings:    engine.Settings{Frames: 256, Rate: 48000, Periods: 2},
	}
}

func TestLiveRendererFrameWide(t *testing.T) {
	var buf bytes.Buffer
	r := output.NewLiveRenderer(&buf)
	r.Width = 120

	r.Frame(sampleFrame())

	out := buf.String()
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\r\x1b[K")),
		"frame must redraw in place")
	assert.Contains(t, out, "12:00:05")
	assert.Contains(t, out, "rate(30s): 3")
	assert.Contains(t, out, "total: 9")
	assert.Contains(t, out, "max/tick: 4")
	assert.Contains(t, out, "up 1m35s")
	assert.Contains(t, out, "256 frames @ 48000 Hz (2 periods)")
}

func TestLiveRendererFrameNarrow(t *testing.T) {
	var buf bytes.Buffer
	r := output.NewLiveRenderer(&buf)
	r.Width = 50

	r.Frame(sampleFrame())

	out := buf.String()
	assert.Contains(t, out, "r:3")
	assert.Contains(t, out, "t:9")
	assert.Contains(t, out, "m:4")
	assert.NotContains(t, out, "rate(30s)", "narrow frame used the wide layout")
}

func TestLiveRendererDetail(t *testing.T) {
	var buf bytes.Buffer
	r := output.NewLiveRenderer(&buf)
	r.Width = 120

	f := sampleFrame()
	f.Recommended = 512
	r.Detail(f)

	out := buf.String()
	assert.Contains(t, out, "+2 xrun(s)")
	assert.Contains(t, out, "consider buffer 256 -> 512 frames")
}

func TestLiveRendererDetailNoRecommendation(t *testing.T) {
	var buf bytes.Buffer
	r := output.NewLiveRenderer(&buf)
	r.Width = 120

	r.Detail(sampleFrame())

	assert.NotContains(t, buf.String(), "consider buffer")
}
