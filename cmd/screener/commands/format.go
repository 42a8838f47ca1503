package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/wonny/precinho/internal/contracts"
)

// PrintSummary prints the run statistics block
func PrintSummary(w io.Writer, rep *contracts.RunReport) {
	s := rep.Summary

	fmt.Fprintln(w)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "  Mode        : %s\n", rep.Mode)
	fmt.Fprintf(w, "  Received    : %d\n", rep.TotalReceived)
	fmt.Fprintf(w, "  Excluded    : %d\n", rep.TotalExcluded)
	fmt.Fprintf(w, "  Candidates  : %d\n", len(rep.Candidates))
	fmt.Fprintf(w, "  Ranked      : %d\n", len(rep.Ranked))
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
	fmt.Fprintf(w, "  Score       : mean %.2f / median %.2f\n", s.MeanScore, s.MedianScore)
	if s.DefinedValuations > 0 {
		fmt.Fprintf(w, "  Discount    : mean %.2f%% over %d valuations\n", s.MeanDiscount, s.DefinedValuations)
	}

	labels := make([]string, 0, len(s.TierCounts))
	for label := range s.TierCounts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		fmt.Fprintf(w, "  %-12s: %d\n", label, s.TierCounts[label])
	}
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
}
