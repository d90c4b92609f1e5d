package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/puttrack/internal/simulate"
	"github.com/okian/puttrack/pkg/logger"
)

var simCfg simulate.Config

var simCalibration string

func init() {
	f := simulateCmd.Flags()
	f.StringVar(&simCfg.BaseURL, "server", "http://localhost:9080", "puttrack server URL")
	f.IntVar(&simCfg.Sessions, "sessions", 10, "number of sessions to simulate")
	f.IntVar(&simCfg.Putts, "putts", 50, "putts per session")
	f.Float64Var(&simCfg.MakeRate, "make-rate", 0.6, "share of putts that are makes")
	f.IntVar(&simCfg.Workers, "workers", 4, "sessions driven concurrently")
	f.IntVar(&simCfg.Batch, "batch", 50, "frames per request")
	f.DurationVar(&simCfg.Timeout, "timeout", 10*time.Second, "HTTP request timeout")
	f.Uint64Var(&simCfg.Seed, "seed", 1, "seed for the outcome sequence")
	f.StringVar(&simCfg.Player, "player", "sim", "player name prefix")
	f.StringVar(&simCalibration, "calibration", "", "calibration the server uses (defaults to calibration_path)")
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Drive synthetic sessions against a running server",
	Long: `Generate scripted putting sessions from the calibration, play them
against a running server over HTTP and check that each final report counts
exactly the scripted makes and misses.

Examples:
  puttctl simulate --sessions 100 --putts 200 --workers 16
  puttctl simulate --server http://tracker:9080 --calibration calibration.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		path := simCalibration
		if path == "" {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			path = cfg.CalibrationPath
		}
		zones, err := loadZones(path)
		if err != nil {
			return err
		}
		if !verbose {
			_ = logger.SetLevelString("info")
		}
		log := logger.Named("simulate")
		_, err = simulate.Run(ctx, simCfg, zones, log)
		return err
	},
}
