// Package calibration loads zone polygons drawn by the calibration tool.
// Files are JSON or YAML maps from zone name to either a bare list of
// [x, y] points or an object with a "points" list, plus an optional
// camera_index.
package calibration

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/okian/puttrack/internal/domain/model"
	"github.com/okian/puttrack/internal/domain/zone"
)

const keyCameraIndex = "camera_index"

// legacy maps the calibration tool's region names to zone names.
var legacy = map[string]zone.Name{
	"putting_mat_roi":  zone.Supply,
	"left_of_mat_roi":  zone.OffMat,
	"ramp_roi":         zone.Ramp,
	"ramp_left_roi":    zone.RampLeft,
	"ramp_center_roi":  zone.RampCenter,
	"ramp_right_roi":   zone.RampRight,
	"hole_roi":         zone.Target,
	"hole_top_roi":     zone.TargetTop,
	"hole_right_roi":   zone.TargetRight,
	"hole_low_roi":     zone.TargetLow,
	"hole_left_roi":    zone.TargetLeft,
	"return_track_roi": zone.Return,
	"catch_roi":        zone.Catch,
	"ignore_area_roi":  zone.Ignore,
}

var known = func() map[zone.Name]bool {
	m := map[zone.Name]bool{}
	for _, n := range []zone.Name{zone.Supply, zone.OffMat, zone.Return, zone.Catch, zone.Ignore} {
		m[n] = true
	}
	for _, n := range zone.RampZones {
		m[n] = true
	}
	for _, n := range zone.TargetZones {
		m[n] = true
	}
	return m
}()

// Calibration is a parsed calibration file.
type Calibration struct {
	CameraIndex int
	Zones       []zone.Zone
	// Inferred lists zones derived from others because the file lacked them.
	Inferred []zone.Name
	// Unknown lists keys that did not name a zone.
	Unknown []string
}

// Map builds the zone map for a session.
func (c Calibration) Map(opts ...zone.Option) *zone.Map {
	return zone.NewMap(c.Zones, opts...)
}

// Missing returns the core zones the calibration does not define.
func (c Calibration) Missing() []zone.Name {
	have := map[zone.Name]bool{}
	for _, z := range c.Zones {
		have[z.Name] = true
	}
	var out []zone.Name
	for _, n := range []zone.Name{zone.Supply, zone.Ramp, zone.Target, zone.Return, zone.Catch} {
		if !have[n] {
			out = append(out, n)
		}
	}
	return out
}

// LoadFile reads and parses the calibration at path.
func LoadFile(path string) (Calibration, error) {
	f, err := os.Open(path)
	if err != nil {
		return Calibration{}, fmt.Errorf("%w: %v", ErrLoadCalibration, err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Load parses a calibration and fills in inferable zones.
func Load(r io.Reader) (Calibration, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Calibration{}, fmt.Errorf("%w: %v", ErrLoadCalibration, err)
	}
	k := koanf.New("::")
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return Calibration{}, fmt.Errorf("%w: %v", ErrLoadCalibration, err)
	}

	raw := k.Raw()
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var cal Calibration
	for _, key := range keys {
		if strings.EqualFold(key, keyCameraIndex) {
			idx, ok := toFloat(raw[key])
			if !ok {
				return Calibration{}, fmt.Errorf("%w: camera_index %v", ErrInvalidCalibration, raw[key])
			}
			cal.CameraIndex = int(idx)
			continue
		}
		name, ok := zoneName(key)
		if !ok {
			cal.Unknown = append(cal.Unknown, key)
			continue
		}
		pts, err := points(raw[key])
		if err != nil {
			return Calibration{}, fmt.Errorf("%w: %s: %v", ErrInvalidCalibration, key, err)
		}
		cal.Zones = append(cal.Zones, zone.Zone{Name: name, Polygon: pts})
	}
	cal.Zones, cal.Inferred = zone.Complete(cal.Zones)
	return cal, nil
}

func zoneName(key string) (zone.Name, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	if n, ok := legacy[k]; ok {
		return n, true
	}
	n := zone.Name(k)
	return n, known[n]
}

func points(v any) ([]model.Point, error) {
	if m, ok := v.(map[string]any); ok {
		v = m["points"]
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of points, got %T", v)
	}
	out := make([]model.Point, 0, len(list))
	for i, item := range list {
		p, err := point(item)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func point(v any) (model.Point, error) {
	switch t := v.(type) {
	case []any:
		if len(t) != 2 {
			return model.Point{}, fmt.Errorf("expected [x, y], got %d values", len(t))
		}
		x, okx := toFloat(t[0])
		y, oky := toFloat(t[1])
		if !okx || !oky {
			return model.Point{}, fmt.Errorf("non-numeric coordinate %v", t)
		}
		return model.Point{X: x, Y: y}, nil
	case map[string]any:
		x, okx := toFloat(t["x"])
		y, oky := toFloat(t["y"])
		if !okx || !oky {
			return model.Point{}, fmt.Errorf("non-numeric coordinate %v", t)
		}
		return model.Point{X: x, Y: y}, nil
	default:
		return model.Point{}, fmt.Errorf("unexpected point %T", v)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
