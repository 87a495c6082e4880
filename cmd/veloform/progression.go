package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"veloform/internal/store"
)

var (
	progressionZone string
	progressionDays int
)

var progressionCmd = &cobra.Command{
	Use:     "progression",
	Aliases: []string{"prog"},
	Short:   "Inspect per-zone progression levels",
}

var progressionLevelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Show the current level in every zone",
	RunE: func(cmd *cobra.Command, args []string) error {
		levels, err := engine.GetProgressionLevels(cmd.Context(), athleteID)
		if err != nil {
			return err
		}

		bold := color.New(color.Bold)
		faint := color.New(color.Faint)
		bold.Printf("%-12s %-7s %-9s %s\n", "Zone", "Level", "Workouts", "Last change")
		for _, p := range levels {
			last := "-"
			if p.LastChangedAt != nil {
				last = fmt.Sprintf("%s (%+.2f)", p.LastChangedAt.Format("2006-01-02"), p.LastDelta)
			}
			fmt.Printf("%-12s %-7.1f %-9d %s\n",
				string(p.Zone), p.Level, p.WorkoutsCompleted, faint.Sprint(last))
		}
		return nil
	},
}

var progressionHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent level changes",
	Long: `Show the progression audit trail, newest first.

Examples:
  veloform progression history
  veloform progression history --zone threshold --days 30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var zone *store.Zone
		if progressionZone != "" {
			z := store.Zone(progressionZone)
			zone = &z
		}
		days := progressionDays
		if days <= 0 {
			days = cfg.History.DaysBack
		}

		entries, err := engine.GetProgressionHistory(cmd.Context(), athleteID, zone, days)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No level changes in the window.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, e := range entries {
			activity := ""
			if e.ActivityID != nil {
				activity = faint.Sprintf("  activity %d", *e.ActivityID)
			}
			fmt.Printf("%s  %-12s %.1f → %.1f (%+.2f)  %s%s\n",
				faint.Sprint(e.CreatedAt.Format("2006-01-02 15:04")),
				string(e.Zone), e.OldLevel, e.NewLevel, e.Delta, e.Reason, activity)
		}
		return nil
	},
}

var progressionReseedCmd = &cobra.Command{
	Use:   "reseed",
	Short: "Recompute all levels from reported exertion",
	Long: `Replace every zone's level with one seeded from the athlete's
average RPE in that zone. Useful after a long break or when levels
have drifted away from reality.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		levels, err := engine.ReseedProgressionLevels(cmd.Context(), athleteID)
		if err != nil {
			return err
		}

		color.Green("✓ Progression levels reseeded")
		for _, p := range levels {
			fmt.Printf("  %-12s %.1f\n", string(p.Zone), p.Level)
		}
		return nil
	},
}

func init() {
	progressionHistoryCmd.Flags().StringVar(&progressionZone, "zone", "", "filter to one zone")
	progressionHistoryCmd.Flags().IntVar(&progressionDays, "days", 0, "window in days (default from config)")
	progressionCmd.AddCommand(progressionLevelsCmd)
	progressionCmd.AddCommand(progressionHistoryCmd)
	progressionCmd.AddCommand(progressionReseedCmd)
	rootCmd.AddCommand(progressionCmd)
}
