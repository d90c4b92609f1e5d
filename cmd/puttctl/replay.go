package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/puttrack/internal/adapters/putlog"
	"github.com/okian/puttrack/internal/domain/classifier"
	"github.com/okian/puttrack/internal/replay"
	"github.com/okian/puttrack/pkg/logger"
)

var (
	replayCalibration string
	replayLog         string
)

func init() {
	replayCmd.Flags().StringVar(&replayCalibration, "calibration", "", "calibration file (defaults to calibration_path)")
	replayCmd.Flags().StringVar(&replayLog, "log", "", "also write the putt log CSV here")
}

var replayCmd = &cobra.Command{
	Use:   "replay <frames.jsonl>",
	Short: "Run recorded frames through the classifier and report",
	Long: `Replay a recorded session. Each input line is a frame object:

  {"frame_time": 1.23, "detections": [{"center": {"x": 10, "y": 20}, "confidence": 0.8}]}

Frames the classifier rejects are listed on stderr and skipped.

Examples:
  puttctl replay session.jsonl --calibration calibration.json --log putts.csv
  puttctl replay - --format csv < session.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	ctx := cmd.Context()
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	calPath := replayCalibration
	if calPath == "" {
		calPath = cfg.CalibrationPath
	}
	zones, err := loadZones(calPath)
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open frames: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	opts := []replay.Option{
		replay.WithClassifier(classifier.WithConfig(cfg.Classifier())),
		replay.WithLogger(logger.Named("replay")),
	}
	if replayLog != "" {
		w, err := putlog.Create(replayLog)
		if err != nil {
			return err
		}
		defer func() { _ = w.Close() }()
		opts = append(opts, replay.WithLog(w))
	}

	res, err := replay.Run(ctx, zones, in, opts...)
	if err != nil {
		return err
	}
	for _, fe := range res.Rejected {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s\n", fe)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "replayed %d frames, %d putts, final state %s\n", res.Frames, len(res.Events), res.Final)
	return emitReport(cmd, cfg, args[0], res.Events)
}
