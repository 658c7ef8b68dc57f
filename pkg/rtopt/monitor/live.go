package monitor

import (
	"context"
	"time"

	"github.com/mkessler/rtopt/pkg/rtopt/engine"
	"github.com/mkessler/rtopt/pkg/rtopt/logging"
	"github.com/mkessler/rtopt/pkg/rtopt/xrun"
)

// LiveFrame is one tick of the live monitor, handed to the renderer.
type LiveFrame struct {
	Time        time.Time
	NewXruns    uint
	Rate        uint
	Total       uint
	MaxInterval uint
	Elapsed     time.Duration
	Settings    engine.Settings

	// Recommended is the advisory buffer size for this tick's rate,
	// zero when no change is suggested.
	Recommended uint
}

// LiveRenderer displays live monitor frames. The status line is
// redrawn every tick; a detail line is added when the tick saw new
// xruns.
type LiveRenderer interface {
	Frame(f LiveFrame)
	Detail(f LiveFrame)
}

// LiveMonitor is the interactive monitoring loop. It is read-only with
// respect to the optimization state: it observes and reports, nothing
// else, so cancellation needs no rollback.
type LiveMonitor struct {
	deps     Deps
	renderer LiveRenderer
	log      *logging.Logger

	settings engine.Settings
}

// NewLiveMonitor returns a LiveMonitor rendering through r.
func NewLiveMonitor(deps Deps, r LiveRenderer) *LiveMonitor {
	return &LiveMonitor{
		deps:     deps,
		renderer: r,
		log:      logging.Get("live"),
	}
}

// Run ticks until ctx is cancelled (there is no automatic timeout; the
// user interrupts the session).
func (m *LiveMonitor) Run(ctx context.Context) error {
	baseline := m.deps.Collector.LiveEngineXruns()
	session := NewSession(time.Now(), baseline)
	m.settings = engine.LoadSettings()

	ticker := time.NewTicker(m.deps.Cfg.LiveInterval())
	defer ticker.Stop()

	m.log.Info("live monitor started", "baseline", baseline)

	for {
		select {
		case <-ctx.Done():
			m.log.Info("live monitor stopped",
				"total", session.Total(), "max_interval", session.MaxInterval())
			return ctx.Err()
		case now := <-ticker.C:
			m.tick(session, now)
		}
	}
}

func (m *LiveMonitor) tick(session *Session, now time.Time) {
	current := m.deps.Collector.LiveEngineXruns()
	delta := session.Observe(now, current)
	rate := session.Rate(now)

	if delta > 0 {
		// The engine may have restarted with a new buffer size since
		// the session began; the recommendation must come from the
		// settings in effect now.
		m.settings = engine.LoadSettings()
	}

	frame := LiveFrame{
		Time:        now,
		NewXruns:    delta,
		Rate:        rate,
		Total:       session.Total(),
		MaxInterval: session.MaxInterval(),
		Elapsed:     session.Elapsed(now),
		Settings:    m.settings,
	}

	if delta > 0 && m.settings.Frames > 0 {
		if recommended := xrun.RecommendBuffer(m.settings.Frames, rate); recommended != m.settings.Frames {
			frame.Recommended = recommended
		}
	}

	m.renderer.Frame(frame)
	if delta > 0 {
		m.renderer.Detail(frame)
	}
}
