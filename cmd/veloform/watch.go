package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run trend detection on a schedule",
	Long: `Run the trend detectors for every known athlete on a fixed
interval. Athletes who have disabled adaptation are skipped. Stops
cleanly on interrupt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval := watchInterval
		if interval <= 0 {
			interval = cfg.Detection.Interval
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		color.Cyan("Watching for trends every %s (ctrl-c to stop)", interval)
		if err := runDetectionPass(ctx); err != nil {
			return err
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				fmt.Println("\nStopped.")
				return nil
			case <-ticker.C:
				if err := runDetectionPass(ctx); err != nil {
					if errors.Is(err, context.Canceled) {
						continue
					}
					log.Errorw("detection pass failed", "error", err)
				}
			}
		}
	},
}

// runDetectionPass runs the detectors once for every athlete with
// adaptation enabled.
func runDetectionPass(ctx context.Context) error {
	athletes, err := db.ListAthleteIDs(ctx)
	if err != nil {
		return err
	}

	for _, id := range athletes {
		settings, err := engine.GetAdaptationSettings(ctx, id)
		if err != nil {
			return err
		}
		if !settings.Enabled {
			log.Debugw("adaptation disabled, skipping", "athlete", id)
			continue
		}

		res, err := engine.DetectAllTrends(ctx, id, cfg.Detection.LookbackDays)
		if err != nil {
			return err
		}
		if res.Count > 0 {
			color.Green("✓ %s  athlete %d: %d trend(s)",
				time.Now().Format("15:04:05"), id, res.Count)
		}
	}
	return nil
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "time between passes (default from config)")
	rootCmd.AddCommand(watchCmd)
}
