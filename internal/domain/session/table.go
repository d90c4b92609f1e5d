package session

import (
	"encoding/csv"
	"io"
	"strconv"
)

// TableHeader is the header row of the event section of the table.
var TableHeader = []string{"putt_index", "time_s", "classification", "detail"}

// Table is the flattened form of a report: one row per event followed by
// label/value summary rows.
type Table struct {
	Header  []string
	Rows    [][]string
	Summary [][]string
}

// Table flattens the report. Every number is taken from the report itself
// so both forms agree.
func (r Report) Table() Table {
	t := Table{Header: TableHeader}
	for _, p := range r.Putts {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(p.Index),
			ftoa(p.Time),
			p.Classification,
			p.Detail,
		})
	}

	add := func(label, value string) {
		t.Summary = append(t.Summary, []string{label, value})
	}
	add("Player Name", r.Info.PlayerName)
	add("Session ID", r.Info.SessionID)
	add("Report Generated At", r.Info.GeneratedAt)
	add("Total Putts", strconv.Itoa(r.Stats.TotalPutts))
	add("Total Makes", strconv.Itoa(r.Stats.TotalMakes))
	add("Make Percentage", ftoa(r.Stats.MakePercentage))
	add("Total Misses", strconv.Itoa(r.Stats.TotalMisses))
	add("Miss Percentage", ftoa(r.Stats.MissPercentage))
	for _, b := range missBuckets {
		add("Misses "+b, strconv.Itoa(r.Stats.MissesByCategory[b]))
	}
	add("Max Consecutive Makes", strconv.Itoa(r.Streaks.MaxConsecutive))
	for _, tc := range r.Streaks.Thresholds {
		add("Streaks over "+strconv.Itoa(tc.Threshold), strconv.Itoa(tc.Runs))
	}
	add("Session Duration (seconds)", ftoa(r.Info.DurationSeconds))
	add("Putts Per Minute", ftoa(r.Time.PuttsPerMinute))
	add("Makes Per Minute", ftoa(r.Time.MakesPerMinute))
	add("Most Makes in "+ftoa(r.Time.WindowSeconds)+" seconds", strconv.Itoa(r.Time.MostMakesInWindow))
	fastest := "N/A"
	if r.Time.FastestKSeconds != nil {
		fastest = ftoa(*r.Time.FastestKSeconds)
	}
	add("Fastest "+strconv.Itoa(r.Time.FastestK)+" Makes (seconds)", fastest)
	return t
}

// WriteCSV writes the header, the event rows, a blank separator and the
// summary rows.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	if err := cw.Write([]string{}); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Summary); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
