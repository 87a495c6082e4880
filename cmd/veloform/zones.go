package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"veloform/internal/store"
)

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "Show the current training zones",
	RunE: func(cmd *cobra.Command, args []string) error {
		zones, err := engine.GetCurrentZones(cmd.Context(), athleteID)
		if errors.Is(err, store.ErrNoBenchmark) {
			return errors.New(`no benchmark on file - run "veloform benchmark set <ftp>" first`)
		}
		if err != nil {
			return err
		}
		printZones(zones)
		return nil
	},
}

func printZones(zones []store.TrainingZone) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	bold.Printf("%-4s %-12s %-12s %-10s %s\n", "#", "Zone", "Power (W)", "% FTP", "HR (bpm)")
	for _, z := range zones {
		hr := "-"
		if z.HRLow != nil && z.HRHigh != nil {
			hr = fmt.Sprintf("%d-%d", *z.HRLow, *z.HRHigh)
		}
		// Pad before coloring: escape codes would throw off the width.
		pct := fmt.Sprintf("%-10s", fmt.Sprintf("%d-%d%%", z.PctFTPLow, z.PctFTPHigh))
		fmt.Printf("%-4s %-12s %-12s %s %s\n",
			fmt.Sprintf("Z%d", z.ZoneIndex+1),
			string(z.Zone),
			fmt.Sprintf("%d-%d", z.PowerLow, z.PowerHigh),
			faint.Sprint(pct),
			hr)
	}
}

func init() {
	rootCmd.AddCommand(zonesCmd)
}
