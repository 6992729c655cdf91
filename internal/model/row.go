// Package model holds the shared types passed between pipeline stages.
package model

// Canonical column names produced by the cleaning stage. Every cleaned row
// carries exactly these three columns, written to the spreadsheet in this
// order.
const (
	ColumnDate    = "Date"
	ColumnPhone   = "Phone Number"
	ColumnProduct = "Product Name"
)

// CanonicalColumns returns the cleaned-row column set in write order.
func CanonicalColumns() []string {
	return []string{ColumnDate, ColumnPhone, ColumnProduct}
}

// RowRecord is a single parsed data row: column name -> raw cell value.
// A missing key means the source cell was absent. Rows are treated as
// immutable after parsing; stages that annotate rows work on copies.
type RowRecord map[string]string

// Clone returns a copy of the row safe to mutate.
func (r RowRecord) Clone() RowRecord {
	out := make(RowRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Get returns the value for a column, "" when absent.
func (r RowRecord) Get(column string) string {
	return r[column]
}

// FileRows is one uploaded file parsed into ordered rows. Columns preserves
// the header order from the source file; RowRecord alone cannot, and the
// cleaning stage needs positional fallbacks.
type FileRows struct {
	Name    string      `json:"name"`
	Columns []string    `json:"columns"`
	Rows    []RowRecord `json:"rows"`
}

// RowCount returns the number of data rows.
func (f FileRows) RowCount() int {
	return len(f.Rows)
}
