package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/puttrack/internal/adapters/putlog"
	"github.com/okian/puttrack/internal/config"
	"github.com/okian/puttrack/internal/domain/model"
	"github.com/okian/puttrack/internal/domain/session"
)

var (
	reportPlayer string
	reportEmail  string
	reportFormat string
)

func init() {
	for _, c := range []*cobra.Command{reportCmd, replayCmd} {
		c.Flags().StringVar(&reportPlayer, "player", "", "player name recorded in the report")
		c.Flags().StringVar(&reportEmail, "email", "", "player email recorded in the report")
		c.Flags().StringVar(&reportFormat, "format", "json", "report format: json or csv")
	}
}

var reportCmd = &cobra.Command{
	Use:   "report <putt-log.csv>",
	Short: "Aggregate a putt log into a session report",
	Long: `Aggregate a putt log CSV into a session report.

Rows with malformed numbers, an unknown classification or a time earlier
than the previous row are reported on stderr and skipped.

Examples:
  # JSON report
  puttctl report logs/3f2a.csv --player ann

  # Flattened table as CSV
  puttctl report logs/3f2a.csv --format csv -o report.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	cfg, err := loadConfig(cmd.Context())
	if err != nil {
		return err
	}
	res, err := putlog.ReadFile(args[0])
	if err != nil {
		return err
	}
	for _, re := range res.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s\n", re)
	}
	return emitReport(cmd, cfg, args[0], res.Events)
}

func checkFormat() error {
	switch reportFormat {
	case "json", "csv":
		return nil
	default:
		return fmt.Errorf("unknown format %q: want json or csv", reportFormat)
	}
}

// emitReport aggregates events and writes the report selected by --format.
func emitReport(cmd *cobra.Command, cfg *config.Config, source string, events []model.PuttEvent) error {
	id := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if source == "-" {
		id = ""
	}
	info := session.Info{
		SessionID:   id,
		PlayerName:  reportPlayer,
		PlayerEmail: reportEmail,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	rep, err := session.Aggregate(events, append([]session.Option{session.WithInfo(info)}, cfg.ReportOptions()...)...)
	if err != nil {
		return err
	}
	w, closeOut, err := output(cmd)
	if err != nil {
		return err
	}
	if err := writeReport(w, rep); err != nil {
		_ = closeOut()
		return err
	}
	return closeOut()
}

func writeReport(w io.Writer, rep session.Report) error {
	if reportFormat == "csv" {
		return rep.Table().WriteCSV(w)
	}
	return rep.WriteJSON(w)
}
