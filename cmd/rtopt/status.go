package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkessler/rtopt/pkg/rtopt/history"
	"github.com/mkessler/rtopt/pkg/rtopt/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show optimization state and xrun health",
	RunE:  runStatus,
}

var detailedCmd = &cobra.Command{
	Use:   "detailed",
	Short: "Show detailed status including system errors and history",
	Long: `Show everything status shows, plus the 5-minute system error
counters, matched devices, and recent xrun history.`,
	RunE: runDetailed,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(detailedCmd)

	detailedCmd.Flags().IntP("limit", "l", 20, "history records to show")
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	deps, cleanup, err := wire(cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	snap := deps.CollectStatusSnapshot()
	fmt.Print(output.RenderStatus(snap))
	return nil
}

func runDetailed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	deps, cleanup, err := wire(cfg, true)
	if err != nil {
		return err
	}
	defer cleanup()

	snap := deps.CollectStatusSnapshot()

	var records []history.Record
	if deps.History != nil {
		limit, _ := cmd.Flags().GetInt("limit")
		records, err = deps.History.Recent(limit)
		if err != nil {
			printVerbose("history read failed: %v", err)
		}
	}

	fmt.Print(output.RenderDetailed(snap, records))
	return nil
}
