package monitor

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/mkessler/rtopt/pkg/rtopt/history"
	"github.com/mkessler/rtopt/pkg/rtopt/logging"
	"github.com/mkessler/rtopt/pkg/rtopt/state"
	"github.com/mkessler/rtopt/pkg/rtopt/xrun"
)

// sndDevDir is watched for device node churn as a hotplug trigger.
const sndDevDir = "/dev/snd"

// Daemon is the continuous monitoring loop. Presence decisions,
// maintenance passes, and xrun checks each run on their own timer; all
// work happens synchronously on the loop goroutine, so no tick ever
// overlaps another.
type Daemon struct {
	deps  Deps
	runID string
	log   *logging.Logger

	lastNotify time.Time

	// lastXruns holds the most recent xrun check result so presence
	// ticks republish it instead of zeroing the tray count between
	// checks.
	lastXruns uint
}

// NewDaemon returns a Daemon over deps.
func NewDaemon(deps Deps) *Daemon {
	return &Daemon{
		deps:  deps,
		runID: uuid.New().String(),
		log:   logging.Get("monitor"),
	}
}

// RunID identifies this daemon run in the tray record and logs.
func (d *Daemon) RunID() string { return d.runID }

// Run executes the daemon loop until ctx is cancelled. The first
// decision cycle runs immediately so a freshly started daemon
// converges without waiting a full period.
func (d *Daemon) Run(ctx context.Context) error {
	cfg := d.deps.Cfg

	presence := time.NewTicker(cfg.PresenceInterval())
	defer presence.Stop()
	maintenance := time.NewTicker(cfg.MaintenanceInterval())
	defer maintenance.Stop()
	xrunCheck := time.NewTicker(cfg.XrunInterval())
	defer xrunCheck.Stop()

	hotplug := d.watchHotplug(ctx)

	d.log.Info("daemon started",
		"run", d.runID,
		"presence_interval", cfg.PresenceInterval(),
		"maintenance_interval", cfg.MaintenanceInterval(),
		"xrun_interval", cfg.XrunInterval())

	if d.deps.History != nil {
		if err := d.deps.History.Prune(cfg.Retention()); err != nil {
			d.log.Warn("history prune failed", "err", err)
		}
	}

	d.presenceTick()

	for {
		select {
		case <-ctx.Done():
			d.log.Info("daemon stopping", "run", d.runID)
			return ctx.Err()
		case <-presence.C:
			d.presenceTick()
		case <-maintenance.C:
			d.maintenanceTick()
		case <-xrunCheck.C:
			d.xrunTick()
		case <-hotplug:
			// Opaque udev hand-off: a device node changed, so check
			// presence now instead of waiting out the interval.
			d.log.Debug("hotplug event, forcing presence check")
			d.presenceTick()
		}
	}
}

// presenceTick re-evaluates presence and drives the controller.
func (d *Daemon) presenceTick() {
	res, err := d.deps.Controller.Decide()
	if err != nil {
		d.log.Error("decision cycle failed", "err", err)
		return
	}
	if r := historyEvent(res); r != nil {
		d.deps.record(r)
	}
	d.publishState(res.State, res.Present, d.lastXruns)
}

// maintenanceTick forces the maintenance pass even when nothing
// changed, converging newly spawned audio processes.
func (d *Daemon) maintenanceTick() {
	if d.deps.Store.Read() != state.Optimized {
		return
	}
	d.deps.Controller.Maintain()
	d.log.Debug("maintenance pass")
}

// xrunTick runs the fast xrun collection, classifies, and emits
// advisories.
func (d *Daemon) xrunTick() {
	count := d.deps.Collector.LiveEngineXruns()
	system := d.deps.Collector.SystemXruns()
	severity := xrun.Classify(count, system.Severe)
	d.lastXruns = count

	if d.deps.Cfg.WarnThreshold > 0 && count >= d.deps.Cfg.WarnThreshold {
		d.log.Warn("xrun threshold breached",
			"count", count, "threshold", d.deps.Cfg.WarnThreshold, "severity", severity.String())
	}

	if count > 0 || system.Severe > 0 {
		d.deps.record(&history.Record{
			Total:    count,
			Severe:   system.Severe,
			Severity: severity.String(),
			Event:    "xrun-check",
		})
	}

	d.publishState(d.deps.Store.Read(), d.deps.Detector.Present(), count)

	if count > 0 {
		d.notify(count, severity)
	}
}

// notify emits a rate-limited notification advisory for nonzero xruns.
func (d *Daemon) notify(count uint, severity xrun.Severity) {
	cooldown := d.deps.Cfg.NotifyCooldownDuration()
	if time.Since(d.lastNotify) < cooldown {
		return
	}
	d.lastNotify = time.Now()
	d.log.Warn("xruns detected", "count", count, "severity", severity.String(), "run", d.runID)
}

// publishState updates the tray side-channel with the daemon run ID.
func (d *Daemon) publishState(st state.State, present bool, recentXruns uint) {
	d.deps.publish(st, present, recentXruns, d.runID)
}

// watchHotplug returns a channel that fires on /dev/snd changes, or a
// never-firing channel when the watch cannot be established. The
// watcher is best-effort; the presence timer alone is sufficient.
func (d *Daemon) watchHotplug(ctx context.Context) <-chan struct{} {
	events := make(chan struct{}, 1)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		d.log.Debug("hotplug watch unavailable", "err", err)
		return events
	}
	if err := watcher.Add(sndDevDir); err != nil {
		d.log.Debug("hotplug watch unavailable", "path", sndDevDir, "err", err)
		watcher.Close()
		return events
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Events:
				if !ok {
					return
				}
				select {
				case events <- struct{}{}:
				default:
					// A trigger is already pending; coalesce.
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return events
}
