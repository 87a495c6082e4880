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
	rideNP        float64
	rideAvg       float64
	rideBest20    float64
	rideElevation float64
	rideCategory  string
	rideZone      string
	rideAt        string
	rideDays      int
)

var rideCmd = &cobra.Command{
	Use:   "ride",
	Short: "Ingest and list rides",
}

var rideAddCmd = &cobra.Command{
	Use:   "add <activity-id> <minutes>",
	Short: "Record a ride and estimate its training stress",
	Long: `Record a ride summary. With power data the training stress score
comes from normalized power against the current FTP; without it a
duration and climbing heuristic fills in. Re-adding an activity id
updates the stored ride.

Examples:
  veloform ride add 12345 60 --np 252 --zone threshold --category threshold
  veloform ride add 12346 180 --elevation 1200 --category endurance`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid activity id: %s", args[0])
		}
		minutes, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid duration: %s", args[1])
		}

		in := service.RideInput{
			ID:              id,
			AthleteID:       athleteID,
			DurationSeconds: minutes * 60,
			ElevationGain:   rideElevation,
			Category:        rideCategory,
		}
		if rideNP > 0 {
			in.NormalizedPower = &rideNP
		}
		if rideAvg > 0 {
			in.AvgPower = &rideAvg
		}
		if rideBest20 > 0 {
			in.Best20MinPower = &rideBest20
		}
		if rideZone != "" {
			z := store.Zone(rideZone)
			in.Zone = &z
		}
		if rideAt != "" {
			at, err := parseDate(rideAt)
			if err != nil {
				return err
			}
			in.StartedAt = at
		}

		r, err := engine.RecordRide(cmd.Context(), in)
		if err != nil {
			return err
		}

		color.Green("✓ Ride %d recorded: %d TSS", r.ID, r.TSS)
		return nil
	},
}

var rideListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List recent rides",
	RunE: func(cmd *cobra.Command, args []string) error {
		days := rideDays
		if days <= 0 {
			days = cfg.History.DaysBack
		}
		rides, err := engine.ListRides(cmd.Context(), athleteID, days)
		if err != nil {
			return err
		}
		if len(rides) == 0 {
			fmt.Println("No rides in the window.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, r := range rides {
			np := "-"
			if r.NormalizedPower != nil {
				np = fmt.Sprintf("%.0f W", *r.NormalizedPower)
			}
			zone := ""
			if r.Zone != nil {
				zone = faint.Sprintf("  %s", *r.Zone)
			}
			fmt.Printf("%s %10d  %3dm  np %-6s tss %3d%s\n",
				faint.Sprint(r.StartedAt.Format("2006-01-02 15:04")),
				r.ID, r.DurationSeconds/60, np, r.TSS, zone)
		}
		return nil
	},
}

func init() {
	rideAddCmd.Flags().Float64Var(&rideNP, "np", 0, "normalized power (watts)")
	rideAddCmd.Flags().Float64Var(&rideAvg, "avg", 0, "average power (watts)")
	rideAddCmd.Flags().Float64Var(&rideBest20, "best20", 0, "best 20-minute power (watts)")
	rideAddCmd.Flags().Float64Var(&rideElevation, "elevation", 0, "elevation gain (meters)")
	rideAddCmd.Flags().StringVar(&rideCategory, "category", "", "workout category, e.g. endurance, threshold")
	rideAddCmd.Flags().StringVar(&rideZone, "zone", "", "dominant zone of the ride")
	rideAddCmd.Flags().StringVar(&rideAt, "at", "", "start time (YYYY-MM-DD HH:MM, default now)")
	rideListCmd.Flags().IntVar(&rideDays, "days", 0, "window in days (default from config)")
	rideCmd.AddCommand(rideAddCmd)
	rideCmd.AddCommand(rideListCmd)
	rootCmd.AddCommand(rideCmd)
}
