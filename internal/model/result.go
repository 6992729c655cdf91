package model

import (
	"fmt"
	"strings"
	"time"
)

// DateSource identifies which resolver in the priority chain produced a
// company's dates. The literals match the order the chain is tried in.
type DateSource string

const (
	DateSourceRows     DateSource = "csv"
	DateSourceFilename DateSource = "filename"
	DateSourceTab      DateSource = "sheet"
)

// WriteMode selects how the sync engine writes a company's rows.
type WriteMode string

const (
	// WriteModeReplace clears every data row below the header and rewrites
	// the tab from row 2.
	WriteModeReplace WriteMode = "replace"
	// WriteModeAppend writes after the last populated row, never touching
	// pre-existing data.
	WriteModeAppend WriteMode = "append"
)

// ParseWriteMode validates a user-supplied mode string.
func ParseWriteMode(s string) (WriteMode, error) {
	switch WriteMode(strings.ToLower(strings.TrimSpace(s))) {
	case WriteModeReplace:
		return WriteModeReplace, nil
	case WriteModeAppend:
		return WriteModeAppend, nil
	default:
		return "", fmt.Errorf("invalid write mode %q (want %q or %q)", s, WriteModeReplace, WriteModeAppend)
	}
}

// ProcessingResult is the per-company output of the processing stage:
// cleaned rows plus the resolved destination. Recomputed fresh on every
// Process call, never mutated incrementally.
type ProcessingResult struct {
	Company string `json:"company"`

	// Rows hold the combined cleaned rows from every file assigned to the
	// company, in file order. Each row carries exactly the canonical columns.
	Rows []RowRecord `json:"rows"`

	RowCount      int `json:"row_count"`
	FilteredCount int `json:"filtered_count"`

	// ExistingTabName is the spreadsheet tab already associated with the
	// company, "" when none was found.
	ExistingTabName string `json:"existing_tab_name,omitempty"`

	// ResolvedTabName is the computed destination tab. "" only when no date
	// evidence existed from any source and no existing tab was found; such a
	// company cannot be synced.
	ResolvedTabName string `json:"resolved_tab_name,omitempty"`

	ResolvedDates []time.Time `json:"resolved_dates,omitempty"`
	DateSource    DateSource  `json:"date_source,omitempty"`
}

// Syncable reports whether the company has a destination to write to.
func (p ProcessingResult) Syncable() bool {
	return p.ResolvedTabName != "" || p.ExistingTabName != ""
}

// SyncResult is the terminal per-company artifact of a sync call. It is
// returned to the caller and never persisted.
type SyncResult struct {
	Success      bool   `json:"success"`
	FinalTabName string `json:"final_tab_name,omitempty"`
	RowsWritten  int    `json:"rows_written,omitempty"`
	RowsAppended int    `json:"rows_appended,omitempty"`
	Error        string `json:"error,omitempty"`
}
