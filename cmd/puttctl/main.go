// Package main implements puttctl, the offline and client-side companion
// of the puttrack server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/puttrack/internal/config"
	"github.com/okian/puttrack/pkg/logger"
)

var (
	// configPath overrides PUTTRACK_CONFIG for every subcommand.
	configPath string
	// outPath sends command output to a file instead of stdout.
	outPath string
	verbose bool
	version = "dev"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "puttctl",
	Short: "Offline tools and client for the puttrack putting tracker",
	Long: `puttctl aggregates putt logs, replays recorded frames through the
classifier, inspects calibration files and drives synthetic sessions
against a running puttrack server.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
			return err
		}
		if verbose {
			return logger.SetLevelString("debug")
		}
		return logger.SetLevelString("warn")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (defaults to $PUTTRACK_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&outPath, "out", "o", "", "write output to this file instead of stdout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(reportCmd, replayCmd, zonesCmd, simulateCmd)
}

// loadConfig layers the --config file, or $PUTTRACK_CONFIG, under the
// environment.
func loadConfig(ctx context.Context) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(ctx, configPath)
	}
	return config.Load(ctx)
}

// output returns the writer selected by --out and a func closing it.
func output(cmd *cobra.Command) (io.Writer, func() error, error) {
	if outPath == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}
