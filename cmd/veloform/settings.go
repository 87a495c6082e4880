package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"veloform/internal/store"
)

var (
	settingsEnabled     bool
	settingsAutoApply   bool
	settingsSensitivity string
	settingsLeadTime    int
	settingsFatigue     float64
	settingsFreshness   float64
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Per-athlete adaptation settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the athlete's adaptation settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := engine.GetAdaptationSettings(cmd.Context(), athleteID)
		if err != nil {
			return err
		}

		onOff := func(v bool) string {
			if v {
				return color.GreenString("on")
			}
			return color.New(color.Faint).Sprint("off")
		}
		fmt.Printf("adaptation:     %s\n", onOff(s.Enabled))
		fmt.Printf("auto-apply:     %s\n", onOff(s.AutoApply))
		fmt.Printf("sensitivity:    %s\n", s.Sensitivity)
		fmt.Printf("min lead time:  %dh\n", s.MinLeadTimeHours)
		fmt.Printf("fatigued below: TSB %.0f\n", s.FatigueThreshold)
		fmt.Printf("fresh above:    TSB %.0f\n", s.FreshnessThreshold)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change adaptation settings",
	Long: `Change one or more adaptation settings. Only the flags given are
touched; everything else keeps its stored value.

Examples:
  veloform settings set --enabled=false
  veloform settings set --sensitivity aggressive --lead-time 12
  veloform settings set --fatigue -15 --freshness 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := engine.GetAdaptationSettings(cmd.Context(), athleteID)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("enabled") {
			s.Enabled = settingsEnabled
		}
		if flags.Changed("auto-apply") {
			s.AutoApply = settingsAutoApply
		}
		if flags.Changed("sensitivity") {
			s.Sensitivity = store.Sensitivity(settingsSensitivity)
		}
		if flags.Changed("lead-time") {
			s.MinLeadTimeHours = settingsLeadTime
		}
		if flags.Changed("fatigue") {
			s.FatigueThreshold = settingsFatigue
		}
		if flags.Changed("freshness") {
			s.FreshnessThreshold = settingsFreshness
		}

		if err := engine.UpdateAdaptationSettings(cmd.Context(), s); err != nil {
			return err
		}
		color.Green("✓ Settings updated")
		return nil
	},
}

func init() {
	settingsSetCmd.Flags().BoolVar(&settingsEnabled, "enabled", true, "enable adaptive progression")
	settingsSetCmd.Flags().BoolVar(&settingsAutoApply, "auto-apply", false, "apply suggested adjustments without confirmation")
	settingsSetCmd.Flags().StringVar(&settingsSensitivity, "sensitivity", "", "conservative, moderate, or aggressive")
	settingsSetCmd.Flags().IntVar(&settingsLeadTime, "lead-time", 0, "minimum hours before a planned workout to adjust it")
	settingsSetCmd.Flags().Float64Var(&settingsFatigue, "fatigue", 0, "TSB at or below reads fatigued")
	settingsSetCmd.Flags().Float64Var(&settingsFreshness, "freshness", 0, "TSB at or above reads fresh")
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
