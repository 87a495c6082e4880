package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"veloform/internal/store"
)

var (
	trendsDays int
	trendsAll  bool
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Detect and review performance trends",
}

var trendsDetectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Run the trend detectors now",
	Long: `Run FTP, volume, and zone-fitness detection over the recent
window. Each significant signal replaces the previously active trend
under the same key; quiet detectors leave earlier trends standing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		days := trendsDays
		if days <= 0 {
			days = cfg.Detection.LookbackDays
		}

		res, err := engine.DetectAllTrends(cmd.Context(), athleteID, days)
		if err != nil {
			return err
		}
		if res.Count == 0 {
			fmt.Println("No significant trends in the window.")
			return nil
		}

		color.Green("✓ %d trend(s) detected", res.Count)
		fmt.Println()
		active, err := engine.GetActiveTrends(cmd.Context(), athleteID)
		if err != nil {
			return err
		}
		printTrends(active)
		return nil
	},
}

var trendsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List trends (active by default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			trends []store.PerformanceTrend
			err    error
		)
		if trendsAll {
			trends, err = engine.GetTrendHistory(cmd.Context(), athleteID)
		} else {
			trends, err = engine.GetActiveTrends(cmd.Context(), athleteID)
		}
		if err != nil {
			return err
		}
		if len(trends) == 0 {
			fmt.Println("No trends recorded.")
			return nil
		}
		printTrends(trends)
		return nil
	},
}

func printTrends(trends []store.PerformanceTrend) {
	faint := color.New(color.Faint)
	for _, t := range trends {
		marker := faint.Sprint("·")
		if t.IsActive {
			marker = color.GreenString("●")
		}
		label := string(t.TrendType)
		if t.Zone != nil {
			label = fmt.Sprintf("%s (%s)", label, *t.Zone)
		}

		direction := string(t.Direction)
		switch t.Direction {
		case store.DirectionImproving:
			direction = color.GreenString(direction)
		case store.DirectionDeclining:
			direction = color.RedString(direction)
		}

		fmt.Printf("%s %-28s %s  %+.1f  conf %.2f  %s\n",
			marker, label, direction, t.ChangeMagnitude, t.Confidence,
			faint.Sprintf("%s → %s (%d samples)",
				t.WindowStart.Format("2006-01-02"),
				t.WindowEnd.Format("2006-01-02"),
				t.SampleCount))
	}
}

func init() {
	trendsDetectCmd.Flags().IntVar(&trendsDays, "days", 0, "lookback window in days (default from config)")
	trendsListCmd.Flags().BoolVar(&trendsAll, "all", false, "include superseded trends")
	trendsCmd.AddCommand(trendsDetectCmd)
	trendsCmd.AddCommand(trendsListCmd)
	rootCmd.AddCommand(trendsCmd)
}
