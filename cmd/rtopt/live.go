package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkessler/rtopt/pkg/rtopt/monitor"
	"github.com/mkessler/rtopt/pkg/rtopt/output"
)

var liveCmd = &cobra.Command{
	Use:   "live-xruns",
	Short: "Watch xruns live in the terminal",
	Long: `Continuously display xrun activity: a rolling 30-second rate, the
session total, and the worst single interval. Shows a buffer
recommendation whenever new xruns appear. Interrupt to exit; nothing
is mutated.`,
	RunE: runLive,
}

func init() {
	rootCmd.AddCommand(liveCmd)
}

func runLive(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	deps, cleanup, err := wire(cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	renderer := output.NewLiveRenderer(os.Stdout)
	err = monitor.NewLiveMonitor(deps, renderer).Run(ctx)
	fmt.Println()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
