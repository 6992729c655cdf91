package ingest

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/sheetsync/internal/model"
)

// parseXLSX reads the first sheet of a workbook. The first row is the
// header; everything below it becomes row records.
func parseXLSX(data []byte) ([]string, []model.RowRecord, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, nil, eris.Wrap(err, "open workbook")
	}
	if len(f.Sheets) == 0 {
		return nil, nil, eris.New("workbook has no sheets")
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, nil, eris.New("empty sheet")
	}

	columns := normalizeHeader(rowToStrings(sheet.Rows[0]))

	var rows []model.RowRecord
	for _, r := range sheet.Rows[1:] {
		if row, ok := recordToRow(columns, rowToStrings(r)); ok {
			rows = append(rows, row)
		}
	}

	return columns, rows, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
