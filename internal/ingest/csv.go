package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/charmap"

	"github.com/sells-group/sheetsync/internal/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// parseCSV reads a CSV export into a header slice and row records. Exports
// from desktop tools are frequently windows-1252 or carry a UTF-8 BOM, so
// the bytes are normalized before parsing.
func parseCSV(data []byte) ([]string, []model.RowRecord, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err == nil {
			data = decoded
		}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // allow ragged rows
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, eris.New("empty file")
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "read header")
	}

	columns := normalizeHeader(header)

	var rows []model.RowRecord
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrap(err, "read row")
		}
		if row, ok := recordToRow(columns, record); ok {
			rows = append(rows, row)
		}
	}

	return columns, rows, nil
}

// normalizeHeader trims each header cell and makes names usable as map keys:
// blanks become positional names and duplicates get a positional suffix.
func normalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("Column %d", i+1)
		}
		if seen[name] {
			name = fmt.Sprintf("%s %d", name, i+1)
		}
		seen[name] = true
		columns[i] = name
	}
	return columns
}

// recordToRow maps one record onto the header. Cells beyond the header are
// dropped; missing trailing cells stay absent. Rows with no content at all
// are skipped (ok=false).
func recordToRow(columns []string, record []string) (model.RowRecord, bool) {
	row := make(model.RowRecord, len(columns))
	empty := true
	for i, col := range columns {
		if i >= len(record) {
			break
		}
		val := strings.TrimSpace(record[i])
		row[col] = val
		if val != "" {
			empty = false
		}
	}
	if empty {
		return nil, false
	}
	return row, true
}
