package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mkessler/rtopt/pkg/rtopt/config"
	"github.com/mkessler/rtopt/pkg/rtopt/daemon"
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

// rtoptd is the headless monitor daemon. It is equivalent to
// "rtopt monitor" without the CLI surface, intended for service
// managers that want a single binary with no subcommand.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logging.Init(logging.Config{
		Level:      cfg.Logging.Level,
		Path:       cfg.Logging.Path,
		Components: cfg.Logging.Components,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer func() { _ = logging.Close() }()

	pidPath := cfg.PIDPath

	if err := daemon.RecoverStale(pidPath); err != nil {
		log.Printf("Warning: stale PID recovery failed: %v", err)
	}
	if daemon.IsRunning(pidPath) {
		fmt.Fprintln(os.Stderr, "rtoptd is already running")
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(pidPath), 0o755); err != nil {
		log.Fatalf("Failed to create runtime directory: %v", err)
	}
	if err := daemon.WritePIDFile(pidPath); err != nil {
		log.Fatalf("Failed to write PID file: %v", err)
	}
	defer func() {
		if err := daemon.RemovePIDFile(pidPath); err != nil {
			log.Printf("Warning: failed to remove PID file: %v", err)
		}
	}()

	deps, cleanup := buildDeps(cfg)
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("rtoptd starting, state file %s", cfg.StatePath)

	if err := monitor.NewDaemon(deps).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Daemon error: %v", err)
	}
}

func buildDeps(cfg *config.Config) (monitor.Deps, func()) {
	procs := proc.NewProcFS()
	detector := detect.New(os.DirFS("/"), cfg.Device.CardIDs...)
	collector := xrun.NewCollector(procs, syslog.NewFileTail(cfg.SyslogPaths...), syslog.NewKmsgTail())
	collector.GUILogPath = cfg.GUILogPath
	collector.ClientLogPath = cfg.EngineLog
	if cfg.EngineLog != "" {
		collector.Probe = &xrun.LogProbe{Path: cfg.EngineLog}
	}

	store := state.NewStore(cfg.StatePath)

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

	deps := monitor.Deps{
		Cfg:        cfg,
		Detector:   detector,
		Procs:      procs,
		Collector:  collector,
		Controller: resource.NewController(rcfg, sysfs.OS{}, procs, resource.LinuxScheduler{}, store, detector),
		Store:      store,
		Tray:       tray.NewWriter(cfg.TrayPath),
	}

	cleanup := func() {}
	if cfg.History.Enabled {
		h, err := history.Open(cfg.History.Path)
		if err != nil {
			log.Printf("Warning: history store unavailable: %v", err)
		} else {
			deps.History = h
			cleanup = func() { _ = h.Close() }
		}
	}
	return deps, cleanup
}
