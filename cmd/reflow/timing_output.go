package main

import (
	"fmt"
	"io"

	"reflow/internal/driver"
	"reflow/internal/observ"
)

// printTimings sums the per-pass timings of every formatted bundle.
func printTimings(out io.Writer, results []driver.FormatResult) {
	reports := make([]observ.Report, 0, len(results))
	for _, res := range results {
		if res.Err == nil {
			reports = append(reports, res.Timings)
		}
	}
	if len(reports) == 0 {
		return
	}
	fmt.Fprint(out, observ.Merge(reports...).Summary())
}
