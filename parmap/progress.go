package parmap

import (
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// progressSink resolves the configured sink for one dispatch of total tasks.
// The returned finish func releases whatever the sink holds; it is a no-op
// for injected sinks.
func (c *config) progressSink(total int) (sink ProgressFunc, finish func()) {
	switch {
	case c.progress != nil:
		return c.progress, func() {}
	case c.showProgress:
		return barSink(total)
	default:
		return func(int, int) {}, func() {}
	}
}

// barSink renders a terminal progress bar on stderr. The bar serializes
// concurrent updates internally, so workers may tick it directly.
func barSink(total int) (ProgressFunc, func()) {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("mapping"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)

	sink := func(completed, _ int) {
		_ = bar.Set(completed)
	}
	finish := func() {
		_ = bar.Finish()
	}
	return sink, finish
}
