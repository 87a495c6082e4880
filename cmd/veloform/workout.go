package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"veloform/internal/service"
	"veloform/internal/store"
)

var (
	workoutLevel    float64
	workoutActivity int64
	workoutAt       string
)

var workoutCmd = &cobra.Command{
	Use:   "workout",
	Short: "Report workout outcomes",
}

var workoutCompleteCmd = &cobra.Command{
	Use:   "complete <zone> <completion-pct> <rpe>",
	Short: "Score a completed workout against its zone's level",
	Long: `Report how a workout went. Completion is the percent of the
prescribed work finished; RPE is the 1-10 perceived exertion. The
zone's progression level moves by a bounded step based on both.

Examples:
  veloform workout complete threshold 100 7
  veloform workout complete vo2max 80 9 --level 4.5 --activity 12345`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		completion, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid completion percent: %s", args[1])
		}
		rpe, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid rpe: %s", args[2])
		}

		in := service.WorkoutInput{
			AthleteID:     athleteID,
			Zone:          store.Zone(args[0]),
			TargetLevel:   workoutLevel,
			CompletionPct: completion,
			RPE:           rpe,
		}
		if workoutActivity > 0 {
			in.ActivityID = &workoutActivity
		}
		if workoutAt != "" {
			at, err := parseDate(workoutAt)
			if err != nil {
				return err
			}
			in.CompletedAt = at
		}

		res, err := engine.ApplyWorkoutOutcome(cmd.Context(), in)
		if err != nil {
			return err
		}

		switch {
		case res.Delta > 0:
			color.Green("✓ %s level %.1f → %.1f (%+.2f, %s)",
				res.Zone, res.OldLevel, res.NewLevel, res.Delta, res.Reason)
		case res.Delta < 0:
			color.Yellow("▼ %s level %.1f → %.1f (%+.2f, %s)",
				res.Zone, res.OldLevel, res.NewLevel, res.Delta, res.Reason)
		default:
			fmt.Printf("= %s level holds at %.1f (%s)\n", res.Zone, res.NewLevel, res.Reason)
		}
		return nil
	},
}

func init() {
	workoutCompleteCmd.Flags().Float64Var(&workoutLevel, "level", 0, "level the workout targeted (default: current)")
	workoutCompleteCmd.Flags().Int64Var(&workoutActivity, "activity", 0, "source activity id")
	workoutCompleteCmd.Flags().StringVar(&workoutAt, "at", "", "completion time (YYYY-MM-DD HH:MM)")
	workoutCmd.AddCommand(workoutCompleteCmd)
	rootCmd.AddCommand(workoutCmd)
}
