package main

import (
	"fmt"
	"os"

	"github.com/mkessler/rtopt/pkg/rtopt/config"
	"github.com/mkessler/rtopt/pkg/rtopt/detect"
	"github.com/mkessler/rtopt/pkg/rtopt/history"
	"github.com/mkessler/rtopt/pkg/rtopt/logging"
	"github.com/mkessler/rtopt/pkg/rtopt/monitor"
	"github.com/mkessler/rtopt/pkg/rtopt/proc"
	"github.com/mkessler/rtopt/pkg/rtopt/resource"
	"github.com/mkessler/rtopt/pkg/rtopt/state"
	"github.com/mkessler/rtopt/pkg/rtopt/sysfs"
	"github.com/mkessler/rtopt/pkg/rtopt/syslog"
	"github.com/mkessler/rtopt/pkg/rtopt/tray"
	"github.com/mkessler/rtopt/pkg/rtopt/xrun"
)

// wire builds the dependency bundle every command dispatches through.
// withHistory opens the badger store, which takes a directory lock, so
// only long-running or read-heavy commands ask for it.
func wire(cfg *config.Config, withHistory bool) (monitor.Deps, func(), error) {
	if err := initLogging(cfg); err != nil {
		return monitor.Deps{}, nil, err
	}

	procs := proc.NewProcFS()
	detector := detect.New(os.DirFS("/"), cfg.Device.CardIDs...)
	collector := xrun.NewCollector(procs, syslog.NewFileTail(cfg.SyslogPaths...), syslog.NewKmsgTail())
	collector.GUILogPath = cfg.GUILogPath
	collector.ClientLogPath = cfg.EngineLog
	if cfg.EngineLog != "" {
		collector.Probe = &xrun.LogProbe{Path: cfg.EngineLog}
	}

	store := state.NewStore(cfg.StatePath)
	rcfg := resourceConfig(cfg)
	controller := resource.NewController(rcfg, sysfs.OS{}, procs, resource.LinuxScheduler{}, store, detector)

	deps := monitor.Deps{
		Cfg:        cfg,
		Detector:   detector,
		Procs:      procs,
		Collector:  collector,
		Controller: controller,
		Store:      store,
		Tray:       tray.NewWriter(cfg.TrayPath),
	}

	cleanup := func() { _ = logging.Close() }

	if withHistory && cfg.History.Enabled {
		h, err := history.Open(cfg.History.Path)
		if err != nil {
			// History is an optional enrichment; a locked or corrupt
			// store must not block optimization.
			logging.Get("main").Warn("history store unavailable", "err", err)
		} else {
			deps.History = h
			cleanup = func() {
				_ = h.Close()
				_ = logging.Close()
			}
		}
	}

	return deps, cleanup, nil
}

// resourceConfig maps the file configuration onto the controller's
// resource configuration.
func resourceConfig(cfg *config.Config) resource.Config {
	rcfg := resource.DefaultConfig()
	if len(cfg.Cores.Performance) > 0 {
		rcfg.PCores = cfg.Cores.Performance
	}
	if len(cfg.Cores.Efficiency) > 0 {
		rcfg.ECores = cfg.Cores.Efficiency
	}
	if len(cfg.AudioProcesses) > 0 {
		rcfg.AudioProcesses = cfg.AudioProcesses
	}
	if len(cfg.IRQPatterns) > 0 {
		rcfg.IRQPatterns = cfg.IRQPatterns
	}
	if cfg.RTPriority > 0 {
		rcfg.RTPriority = cfg.RTPriority
	}
	return rcfg
}

func initLogging(cfg *config.Config) error {
	consoleLevel := ""
	if getVerbose() {
		consoleLevel = "debug"
	}
	err := logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Path:         cfg.Logging.Path,
		Components:   cfg.Logging.Components,
		ConsoleLevel: consoleLevel,
	})
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	return nil
}
