// Package clean maps loosely-named export columns onto the three canonical
// fields, filters rows in terminal states, and deduplicates by contact key.
package clean

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/sheetsync/internal/model"
)

// statusMarkers flag rows already in a terminal state. Matched as
// case-insensitive substrings of the template/automation column value.
var statusMarkers = []string{"cancelled", "delivered", "shipped"}

// dateSentinels are the literal strings exporters emit for missing dates.
// A row whose normalized Date is one of these never reaches the spreadsheet.
var dateSentinels = map[string]bool{
	"":          true,
	"nan":       true,
	"NaT":       true,
	"null":      true,
	"undefined": true,
}

// isoDate matches YYYY-MM-DD with an optional trailing time component.
var isoDate = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})(?:[T ].*)?$`)

// Result is the outcome of cleaning one file. Rows carry exactly the
// canonical columns, in spreadsheet write order.
type Result struct {
	File              string
	Rows              []model.RowRecord
	InputCount        int
	StatusFiltered    int
	DroppedNoDate     int
	DuplicatesRemoved int
}

// File runs the full cleaning pipeline over one parsed file: status filter,
// canonical column extraction, date normalization, row admission, contact
// key normalization, and contact-key dedupe. Returns
// *model.MissingRequiredColumnsError when the three canonical columns cannot
// all be mapped; that is a hard stop for the file.
func File(file model.FileRows) (*Result, error) {
	res := &Result{File: file.Name, InputCount: len(file.Rows)}

	rows := file.Rows
	if statusCol, ok := FindStatusColumn(file.Columns); ok {
		rows, res.StatusFiltered = filterByStatus(rows, statusCol)
	}

	mapping, err := MapColumns(file)
	if err != nil {
		return nil, err
	}

	admitted := make([]model.RowRecord, 0, len(rows))
	for _, row := range rows {
		date := NormalizeDate(row.Get(mapping.Date))
		if dateSentinels[strings.TrimSpace(date)] {
			res.DroppedNoDate++
			continue
		}
		// Phone and Product may be empty; only the date admits a row.
		admitted = append(admitted, model.RowRecord{
			model.ColumnDate:    date,
			model.ColumnPhone:   NormalizeContactKey(row.Get(mapping.Phone)),
			model.ColumnProduct: strings.TrimSpace(row.Get(mapping.Product)),
		})
	}

	res.Rows, res.DuplicatesRemoved = DedupeByContact(admitted, model.ColumnPhone)

	zap.L().Debug("clean: file done",
		zap.String("file", file.Name),
		zap.Int("input", res.InputCount),
		zap.Int("status_filtered", res.StatusFiltered),
		zap.Int("dropped_no_date", res.DroppedNoDate),
		zap.Int("duplicates", res.DuplicatesRemoved),
		zap.Int("final", len(res.Rows)),
	)
	return res, nil
}

// filterByStatus removes rows whose status column value contains a terminal
// marker. Returns the surviving rows and the number removed.
func filterByStatus(rows []model.RowRecord, column string) ([]model.RowRecord, int) {
	kept := make([]model.RowRecord, 0, len(rows))
	removed := 0
	for _, row := range rows {
		if hasTerminalMarker(row.Get(column)) {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	return kept, removed
}

func hasTerminalMarker(value string) bool {
	lower := strings.ToLower(value)
	for _, marker := range statusMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// NormalizeDate rewrites ISO YYYY-MM-DD values (with or without a time
// component) into DD-MM-YYYY. Anything else passes through untouched: an odd
// format is preferred over dropping the row.
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	m := isoDate.FindStringSubmatch(raw)
	if m == nil {
		return raw
	}
	return m[3] + "-" + m[2] + "-" + m[1]
}
