package main

import (
	"fmt"
	"io"
	"time"

	"rbfmt/internal/driver"
	"rbfmt/internal/observ"
)

// printFileTimings writes one line per file with its phase breakdown and a
// total for the run.
func printFileTimings(out io.Writer, results []driver.FileResult, elapsed time.Duration) {
	if out == nil {
		return
	}
	reports := make([]observ.Report, 0, len(results))
	for _, r := range results {
		if r.Timing == nil {
			continue
		}
		reports = append(reports, *r.Timing)
		if _, err := fmt.Fprintf(out, "%s %.1f ms %s\n", r.Path, r.Timing.TotalMS, r.Timing); err != nil {
			panic(err)
		}
	}
	total := observ.Merge(reports...)
	if _, err := fmt.Fprintf(out, "formatted %d files in %.1f ms (cpu %.1f ms: %s)\n", len(results), toMillis(elapsed), total.TotalMS, total); err != nil {
		panic(err)
	}
}
