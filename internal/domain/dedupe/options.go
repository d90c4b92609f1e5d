// Package dedupe tracks recently seen frame IDs so a resubmitted frame is
// classified at most once.
package dedupe

// Option applies a configuration option to the window deduper.
type Option func(*windowDeduper)

// WithMaxSize sets how many IDs are remembered. When full, the oldest ID
// is forgotten first. maxSize <= 0 keeps every ID.
func WithMaxSize(maxSize int) Option {
	return func(d *windowDeduper) {
		d.maxSize = maxSize
	}
}
