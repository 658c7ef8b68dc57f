package main

import (
	"time"

	"github.com/spf13/cobra"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single optimization decision cycle",
	Long: `Check device presence once and apply, revert, or maintain the
optimized configuration accordingly, then exit.`,
	RunE: runOnce,
}

var onceDelayedCmd = &cobra.Command{
	Use:   "once-delayed",
	Short: "Run a single decision cycle after a short delay",
	Long: `Like once, but waits a few seconds first. Intended as the target of
a udev rule: the delay gives the kernel time to finish enumerating a
freshly plugged device before the decision runs.`,
	RunE: runOnceDelayed,
}

func init() {
	rootCmd.AddCommand(onceCmd)
	rootCmd.AddCommand(onceDelayedCmd)
}

func runOnce(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	deps, cleanup, err := wire(cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := deps.RunDecisionCycle()
	if err != nil {
		return err
	}
	printVerbose("presence=%v writes=%d failures=%d", res.Present, res.Writes, res.Failures)
	printInfo("%s (state: %s)", res.Transition.String(), res.State.String())
	return nil
}

func runOnceDelayed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	printVerbose("delaying %s before decision", cfg.OnceDelayDuration())
	time.Sleep(cfg.OnceDelayDuration())
	return runOnce(cmd, args)
}
