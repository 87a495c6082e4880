package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"veloform/internal/analysis"
)

var formDays int

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Show fitness, fatigue, and form",
	Long: `Show the fitness/fatigue balance built from recorded rides:
chronic training load (CTL), acute training load (ATL), and the
training stress balance between them (TSB). The form state reads the
balance against the athlete's adaptation thresholds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		days := formDays
		if days <= 0 {
			days = cfg.History.DaysBack
		}

		form, err := engine.AssessForm(cmd.Context(), athleteID, days)
		if err != nil {
			return err
		}

		state := string(form.State)
		switch form.State {
		case analysis.FormFresh:
			state = color.GreenString(state)
		case analysis.FormFatigued:
			state = color.RedString(state)
		}

		fmt.Printf("fitness (CTL):  %.1f\n", form.CTL)
		fmt.Printf("fatigue (ATL):  %.1f\n", form.ATL)
		fmt.Printf("balance (TSB):  %+.1f\n", form.TSB)
		fmt.Printf("ramp rate:      %+.1f CTL/week\n", form.RampRate)
		fmt.Printf("form:           %s  %s\n", state,
			color.New(color.Faint).Sprint(form.Description))
		return nil
	},
}

func init() {
	formCmd.Flags().IntVar(&formDays, "days", 0, "window in days (default from config)")
	rootCmd.AddCommand(formCmd)
}
