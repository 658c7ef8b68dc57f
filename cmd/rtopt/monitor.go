package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkessler/rtopt/pkg/rtopt/daemon"
	"github.com/mkessler/rtopt/pkg/rtopt/monitor"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the monitoring daemon in the foreground",
	Long: `Run the continuous monitoring loop: presence checks drive the
optimization state machine, periodic xrun checks classify dropout
health, and the tray side-channel is kept current. Stops on SIGINT or
SIGTERM.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	deps, cleanup, err := wire(cfg, true)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := daemon.RecoverStale(cfg.PIDPath); err != nil {
		return err
	}
	if err := ensureDir(cfg.PIDPath); err != nil {
		return err
	}
	if err := daemon.WritePIDFile(cfg.PIDPath); err != nil {
		return err
	}
	defer func() { _ = daemon.RemovePIDFile(cfg.PIDPath) }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printInfo("monitoring started (pid file: %s)", cfg.PIDPath)
	err = monitor.NewDaemon(deps).Run(ctx)
	if errors.Is(err, context.Canceled) {
		printInfo("monitoring stopped")
		return nil
	}
	return err
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}
