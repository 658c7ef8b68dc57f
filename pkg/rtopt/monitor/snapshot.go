// Package monitor drives the optimizer: the daemon loop, the
// interactive live monitor, and the one-shot entry points the CLI
// dispatches to.
package monitor

import (
	"time"

	"github.com/mkessler/rtopt/pkg/rtopt/config"
	"github.com/mkessler/rtopt/pkg/rtopt/detect"
	"github.com/mkessler/rtopt/pkg/rtopt/engine"
	"github.com/mkessler/rtopt/pkg/rtopt/history"
	"github.com/mkessler/rtopt/pkg/rtopt/proc"
	"github.com/mkessler/rtopt/pkg/rtopt/resource"
	"github.com/mkessler/rtopt/pkg/rtopt/state"
	"github.com/mkessler/rtopt/pkg/rtopt/tray"
	"github.com/mkessler/rtopt/pkg/rtopt/xrun"
)

// Deps bundles the collaborators the monitoring entry points need.
// History and Tray are optional (nil / disabled).
type Deps struct {
	Cfg        *config.Config
	Detector   *detect.Detector
	Procs      proc.Lookup
	Collector  *xrun.Collector
	Controller *resource.Controller
	Store      *state.Store
	Tray       *tray.Writer
	History    *history.Store
}

// Snapshot is the combined status view the status commands render.
type Snapshot struct {
	Time            time.Time
	State           state.State
	DeviceConnected bool
	Devices         []detect.Device
	Engine          engine.Status
	Settings        engine.Settings
	LiveXruns       uint
	System          xrun.SystemStats
	Severity        xrun.Severity
}

// CollectStatusSnapshot gathers the current status without mutating
// anything. Every source degrades independently, so a snapshot is
// always produced.
func (d Deps) CollectStatusSnapshot() Snapshot {
	snap := Snapshot{
		Time:     time.Now(),
		State:    d.Store.Read(),
		Engine:   engine.Probe(d.Procs),
		Settings: engine.LoadSettings(),
	}
	snap.Devices = d.Detector.Devices()
	snap.DeviceConnected = len(snap.Devices) > 0
	snap.LiveXruns = d.Collector.LiveEngineXruns()
	snap.System = d.Collector.SystemXruns()
	snap.Severity = xrun.Classify(snap.LiveXruns, snap.System.Severe)
	return snap
}

// DetectDevices re-scans device enumeration and returns the matches.
func (d Deps) DetectDevices() []detect.Device {
	return d.Detector.Devices()
}

// RunDecisionCycle runs a single presence decision through the
// controller. This backs the once and once-delayed commands.
func (d Deps) RunDecisionCycle() (resource.Result, error) {
	res, err := d.Controller.Decide()
	if err != nil {
		return res, err
	}
	d.publish(res.State, res.Present, d.Collector.LiveEngineXruns(), "")
	d.record(historyEvent(res))
	return res, nil
}

// publish updates the tray side-channel, mapping controller state and
// xrun activity to the tray display states.
func (d Deps) publish(st state.State, present bool, recentXruns uint, runID string) {
	if !d.Tray.Enabled() {
		return
	}

	display := "connected"
	switch {
	case !present:
		display = "disconnected"
	case recentXruns >= d.Cfg.WarnThreshold && d.Cfg.WarnThreshold > 0:
		display = "warning"
	case st == state.Optimized:
		display = "optimized"
	}

	status := engine.Probe(d.Procs)
	_ = d.Tray.Update(tray.Record{
		State:           display,
		DeviceConnected: present,
		EngineActive:    status.JackRunning || status.PipeWireRunning,
		EngineSettings:  engine.LoadSettings().String(),
		RecentXruns:     recentXruns,
		RunID:           runID,
		Timestamp:       time.Now(),
	})
}

// record appends a history record when the store is configured.
func (d Deps) record(r *history.Record) {
	if d.History == nil || r == nil {
		return
	}
	_ = d.History.Append(*r)
}

// historyEvent turns a transition into a history record, or nil for
// uninteresting cycles.
func historyEvent(res resource.Result) *history.Record {
	switch res.Transition {
	case resource.TransitionApplied, resource.TransitionReverted:
		return &history.Record{
			Severity: xrun.SeverityPerfect.String(),
			Event:    res.Transition.String(),
		}
	default:
		return nil
	}
}
