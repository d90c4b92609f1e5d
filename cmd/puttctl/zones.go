package main

import (
	"encoding/json"
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okian/puttrack/internal/adapters/calibration"
	"github.com/okian/puttrack/internal/domain/zone"
)

var zonesJSON bool

func init() {
	zonesCmd.Flags().BoolVar(&zonesJSON, "json", false, "print JSON instead of a table")
}

var zonesCmd = &cobra.Command{
	Use:   "zones [calibration]",
	Short: "Inspect a calibration file",
	Long: `Load a calibration file the way the server does and list the
resulting zones, marking the ones inferred from others and the core zones
that are missing.

Examples:
  puttctl zones calibration.json
  puttctl zones --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runZones,
}

type zoneRow struct {
	Name     zone.Name `json:"name"`
	Points   int       `json:"points"`
	Inferred bool      `json:"inferred"`
}

type zonesOutput struct {
	CameraIndex int         `json:"camera_index"`
	Zones       []zoneRow   `json:"zones"`
	Missing     []zone.Name `json:"missing"`
	Unknown     []string    `json:"unknown_keys"`
}

func loadZones(path string) (*zone.Map, error) {
	cal, err := calibration.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("calibration %s: %w", path, err)
	}
	m := cal.Map()
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("calibration %s: %w", path, err)
	}
	return m, nil
}

func runZones(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}
		path = cfg.CalibrationPath
	}
	cal, err := calibration.LoadFile(path)
	if err != nil {
		return err
	}

	out := zonesOutput{CameraIndex: cal.CameraIndex, Missing: cal.Missing(), Unknown: cal.Unknown}
	for _, z := range cal.Zones {
		out.Zones = append(out.Zones, zoneRow{
			Name:     z.Name,
			Points:   len(z.Polygon),
			Inferred: slices.Contains(cal.Inferred, z.Name),
		})
	}

	w, closeOut, err := output(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = closeOut() }()

	if zonesJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "camera index\t%d\n", out.CameraIndex)
	fmt.Fprintln(tw, "ZONE\tPOINTS\tINFERRED")
	for _, r := range out.Zones {
		fmt.Fprintf(tw, "%s\t%d\t%t\n", r.Name, r.Points, r.Inferred)
	}
	for _, n := range out.Missing {
		fmt.Fprintf(tw, "%s\tmissing\t\n", n)
	}
	for _, k := range out.Unknown {
		fmt.Fprintf(tw, "%s\tunknown key\t\n", k)
	}
	return tw.Flush()
}
