package main

import (
	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "List matching USB audio devices",
	RunE:  runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	deps, cleanup, err := wire(cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	devices := deps.DetectDevices()
	if len(devices) == 0 {
		printInfo("no USB audio device detected")
		return nil
	}
	for _, dev := range devices {
		printInfo("%s  %s  (via %s)", dev.CardID, dev.Path, dev.MatchedBy)
	}
	return nil
}
