package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"veloform/internal/config"
	"veloform/internal/logger"
	"veloform/internal/service"
	"veloform/internal/store"
	"veloform/internal/store/postgres"
	"veloform/internal/store/sqlite"
)

var (
	cfgFile   string
	athleteID int64

	cfg    *config.Config
	log    *zap.SugaredLogger
	db     store.Store
	engine *service.Engine
)

var rootCmd = &cobra.Command{
	Use:   "veloform",
	Short: "Adaptive training-load tracking for cyclists",
	Long: `Veloform tracks an athlete's functional threshold power, derives
training zones from it, and adapts per-zone progression levels from
reported workout outcomes. Trend detectors watch recent rides for FTP,
volume, and zone-fitness shifts.

QUICK START:

  $ veloform benchmark set 250 --method ramp   # record an FTP test
  $ veloform zones                             # show the derived zones
  $ veloform workout complete threshold 95 7   # report a workout outcome
  $ veloform ride add 12345 60 --np 252        # ingest a ride
  $ veloform trends detect                     # look for trends now
  $ veloform form                              # fitness/fatigue balance

Data lives in an embedded sqlite database under ~/.veloform by default;
set database.driver to "postgres" in the config to share a server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		log, err = logger.New(cfg.Log.Level, cfg.Log.File)
		if err != nil {
			return err
		}
		db, err = openStore(cmd.Context())
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		engine = service.New(db, log)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if log != nil {
			_ = log.Sync()
		}
		if db != nil {
			return db.Close()
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Database.Driver {
	case "postgres":
		return postgres.Open(ctx, cfg.Database.URL)
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return sqlite.Open(cfg.Database.Path)
	}
}

// parseDate accepts the handful of timestamp shapes used by flags.
func parseDate(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format %q", s)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.veloform/config.yaml)")
	rootCmd.PersistentFlags().Int64Var(&athleteID, "athlete", 1, "athlete id to operate on")
}
