package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

const maxBarWidth = 50

// PlotSampleRecallTerminal draws included samples as horizontal bars in ascending recall order.
func PlotSampleRecallTerminal(w io.Writer, report RecallReport, title string) {
	included := make([]SampleRecall, 0, report.Included)
	var excluded []int
	for _, sample := range report.Samples {
		if sample.Excluded {
			excluded = append(excluded, sample.Sample)
			continue
		}
		included = append(included, sample)
	}

	fmt.Fprintf(w, "\n%s (recall@%d = %.6f):\n", title, report.K, report.Recall)
	fmt.Fprintln(w, "  Sample | Found | Recall   | Bar Chart")
	fmt.Fprintln(w, "---------|-------|----------|"+strings.Repeat("-", maxBarWidth))

	// ascending, ties by sample index
	sort.SliceStable(included, func(i, j int) bool {
		return included[i].Recall < included[j].Recall
	})

	for _, sample := range included {
		// recall already lives in [0, 1]
		barWidth := int(sample.Recall * float64(maxBarWidth))

		bar := strings.Repeat("█", barWidth)
		if barWidth == 0 {
			bar = "▏"
		}

		fmt.Fprintf(w, "%8d | %2d/%-2d | %.6f | %s\n", sample.Sample, sample.Captured, sample.Relevant, sample.Recall, bar)
	}

	if len(excluded) > 0 {
		fmt.Fprintf(w, "\nExcluded (no relevant items): %v\n", excluded)
	}
}
