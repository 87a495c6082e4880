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
	benchLTHR     int
	benchDate     string
	benchMethod   string
	benchActivity int64
)

var benchmarkCmd = &cobra.Command{
	Use:     "benchmark",
	Aliases: []string{"ftp"},
	Short:   "Manage FTP benchmarks",
	Long: `Record and review functional threshold power benchmarks.

Setting a benchmark replaces the athlete's training zones; the previous
benchmark stays on record for history.`,
}

var benchmarkSetCmd = &cobra.Command{
	Use:   "set <ftp-watts>",
	Short: "Record a new benchmark and rebuild the zones",
	Long: `Record a new FTP benchmark and derive the seven training zones.

Examples:
  veloform benchmark set 250
  veloform benchmark set 265 --method ramp --lthr 172
  veloform benchmark set 240 --date 2026-08-01 --activity 12345`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ftp, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ftp: %s", args[0])
		}

		in := service.BenchmarkInput{
			AthleteID:  athleteID,
			FTPWatts:   ftp,
			TestMethod: store.TestMethod(benchMethod),
		}
		if benchLTHR > 0 {
			in.LTHRBpm = &benchLTHR
		}
		if benchActivity > 0 {
			in.SourceActivityID = &benchActivity
		}
		if benchDate != "" {
			d, err := parseDate(benchDate)
			if err != nil {
				return err
			}
			in.TestDate = d
		}

		b, zones, err := engine.SetCurrentBenchmark(cmd.Context(), in)
		if err != nil {
			return err
		}

		color.Green("✓ Benchmark set: %d W (%s)", b.FTPWatts, b.TestMethod)
		fmt.Println()
		printZones(zones)
		return nil
	},
}

var benchmarkListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List benchmark history",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := engine.GetBenchmarkHistory(cmd.Context(), athleteID)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No benchmarks recorded.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, b := range records {
			marker := " "
			if b.IsCurrent {
				marker = color.GreenString("*")
			}
			lthr := "-"
			if b.LTHRBpm != nil {
				lthr = fmt.Sprintf("%d bpm", *b.LTHRBpm)
			}
			fmt.Printf("%s %s  %4d W  %-6s  lthr %s\n",
				marker,
				faint.Sprint(b.TestDate.Format("2006-01-02")),
				b.FTPWatts,
				b.TestMethod,
				lthr)
		}
		return nil
	},
}

func init() {
	benchmarkSetCmd.Flags().IntVar(&benchLTHR, "lthr", 0, "lactate threshold heart rate (bpm)")
	benchmarkSetCmd.Flags().StringVar(&benchDate, "date", "", "test date (YYYY-MM-DD)")
	benchmarkSetCmd.Flags().StringVar(&benchMethod, "method", "manual", "test method: ramp, 20min, 8min, auto, manual")
	benchmarkSetCmd.Flags().Int64Var(&benchActivity, "activity", 0, "source activity id")
	benchmarkCmd.AddCommand(benchmarkSetCmd)
	benchmarkCmd.AddCommand(benchmarkListCmd)
	rootCmd.AddCommand(benchmarkCmd)
}
