package clean

import (
	"strings"

	"github.com/sells-group/sheetsync/internal/model"
)

// NormalizeContactKey reduces a contact value to its digits. An empty result
// means "no contact key".
func NormalizeContactKey(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

// DedupeByContact collapses rows that share a non-empty normalized contact
// key to the first occurrence. Rows whose key normalizes to empty are never
// deduplicated. Returns the surviving rows and the number removed.
func DedupeByContact(rows []model.RowRecord, column string) ([]model.RowRecord, int) {
	seen := make(map[string]bool, len(rows))
	kept := make([]model.RowRecord, 0, len(rows))
	removed := 0
	for _, row := range rows {
		key := NormalizeContactKey(row.Get(column))
		if key == "" {
			kept = append(kept, row)
			continue
		}
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		kept = append(kept, row)
	}
	return kept, removed
}
