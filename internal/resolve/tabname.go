package resolve

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ComputeTabName formats the destination tab name for a company from its
// resolved dates. Business convention: a report dated D lands on the tab
// named for D+1, so every date is shifted forward one day first. Days are
// deduplicated and sorted; the month abbreviation comes from the earliest
// shifted date.
func ComputeTabName(dates []time.Time, company string) string {
	if len(dates) == 0 {
		return ""
	}

	shifted := make([]time.Time, len(dates))
	for i, d := range dates {
		shifted[i] = d.AddDate(0, 0, 1)
	}
	sort.Slice(shifted, func(i, j int) bool { return shifted[i].Before(shifted[j]) })

	seen := make(map[int]bool, len(shifted))
	var days []int
	for _, d := range shifted {
		if !seen[d.Day()] {
			seen[d.Day()] = true
			days = append(days, d.Day())
		}
	}
	sort.Ints(days)

	mon := strings.ToUpper(shifted[0].Format("Jan"))

	var datePart string
	switch len(days) {
	case 1:
		datePart = fmt.Sprintf("%s %d", mon, days[0])
	case 2:
		datePart = fmt.Sprintf("%s %d-%d", mon, days[0], days[1])
	default:
		datePart = fmt.Sprintf("%s %d-%d", mon, days[0], days[len(days)-1])
	}

	return datePart + " " + company
}

// SelectTabName applies the final-selection rule: a computed name wins
// whenever one exists (differing from the existing tab triggers a rename at
// sync time); with no date evidence the existing tab name stands. Empty
// means the company has no destination and cannot be synced.
func SelectTabName(existing, computed string) string {
	if computed != "" {
		return computed
	}
	return existing
}
