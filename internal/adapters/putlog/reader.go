package putlog

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/okian/puttrack/internal/domain/model"
)

// aliases maps legacy column names to the current ones.
var aliases = map[string]string{
	"current_frame_time":      ColFrameTime,
	"detailed_classification": ColDetail,
}

// Result is the outcome of reading a log. Rejected rows do not stop the
// batch; they are collected in Errors.
type Result struct {
	Events  []model.PuttEvent
	Errors  []RowError
	Skipped int
}

// Read parses a log. Rows without a classification are skipped. Rows with
// malformed numbers, an unknown classification or a frame time earlier
// than the previous accepted row are rejected into Result.Errors.
func Read(r io.Reader) (Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Result{}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("read log header: %w", err)
	}
	cols := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if a, ok := aliases[h]; ok {
			h = a
		}
		cols[h] = i
	}
	for _, c := range []string{ColFrameTime, ColClassification} {
		if _, ok := cols[c]; !ok {
			return Result{}, fmt.Errorf("%s: %w", c, ErrMissingColumn)
		}
	}

	var res Result
	last := math.Inf(-1)
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			res.Errors = append(res.Errors, RowError{Line: line, Err: fmt.Errorf("%w: %v", ErrMalformedRow, err)})
			continue
		}
		get := func(c string) string {
			if i, ok := cols[c]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		if get(ColFrameTime) == ColFrameTime || get(ColClassification) == "" {
			res.Skipped++
			continue
		}
		ev, err := decode(get)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Line: line, Err: err})
			continue
		}
		if ev.FrameTime < last {
			res.Errors = append(res.Errors, RowError{Line: line, Err: fmt.Errorf("%.2f after %.2f: %w", ev.FrameTime, last, ErrOutOfOrder)})
			continue
		}
		last = ev.FrameTime
		res.Events = append(res.Events, ev)
	}
	return res, nil
}

// ReadFile reads the log at path.
func ReadFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

func decode(get func(string) string) (model.PuttEvent, error) {
	t, err := parseFloat(get(ColFrameTime))
	if err != nil {
		return model.PuttEvent{}, fmt.Errorf("%s: %w", ColFrameTime, err)
	}
	c := model.Classification(strings.ToUpper(get(ColClassification)))
	if !c.Valid() {
		return model.PuttEvent{}, fmt.Errorf("classification %q: %w", c, ErrMalformedRow)
	}
	ev := model.PuttEvent{FrameTime: t, Classification: c, Detail: get(ColDetail)}

	bx, by := get(ColBallX), get(ColBallY)
	if bx != "" || by != "" {
		x, err := parseFloat(bx)
		if err != nil {
			return model.PuttEvent{}, fmt.Errorf("%s: %w", ColBallX, err)
		}
		y, err := parseFloat(by)
		if err != nil {
			return model.PuttEvent{}, fmt.Errorf("%s: %w", ColBallY, err)
		}
		ev.BallCenter = &model.Point{X: x, Y: y}
	}

	if h := get(ColHistory); h != "" {
		if err := json.Unmarshal([]byte(h), &ev.TransitionHistory); err != nil {
			return model.PuttEvent{}, fmt.Errorf("%s: %w", ColHistory, ErrMalformedRow)
		}
		if len(ev.TransitionHistory) == 0 {
			ev.TransitionHistory = nil
		}
	}
	return ev, nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("missing number: %w", ErrMalformedRow)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("bad number %q: %w", s, ErrMalformedRow)
	}
	return v, nil
}
