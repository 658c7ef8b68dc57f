package main

import (
	"github.com/spf13/cobra"

	"github.com/mkessler/rtopt/pkg/rtopt/daemon"
	"github.com/mkessler/rtopt/pkg/rtopt/state"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Revert optimizations and stop the daemon",
	Long: `Revert every optimized setting to its standard value, persist the
standard state, and signal a running monitor daemon to exit.`,
	RunE: runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	deps, cleanup, err := wire(cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	// Revert unconditionally, regardless of presence.
	err = deps.Store.Transact(func(state.State) (state.State, error) {
		deps.Controller.Revert()
		return state.Standard, nil
	})
	if err != nil {
		return err
	}
	printInfo("optimizations reverted")

	if daemon.IsRunning(cfg.PIDPath) {
		if err := daemon.Stop(cfg.PIDPath); err != nil {
			printError("failed to signal daemon: %v", err)
			return err
		}
		printInfo("daemon signalled to stop")
	} else {
		printVerbose("no running daemon found")
	}
	return nil
}
