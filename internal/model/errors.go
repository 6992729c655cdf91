package model

import (
	"fmt"
	"strings"
)

// NoTextColumnError reports that the extraction stage found no free-text
// column in a file. It is a per-file failure: other files in the same batch
// keep processing.
type NoTextColumnError struct {
	File string
}

func (e *NoTextColumnError) Error() string {
	return fmt.Sprintf("no text column found in %s (expected a header named text, message, body, content, or msg)", e.File)
}

// MissingRequiredColumnsError reports that the cleaning stage could not map
// every canonical column for a file. This is a hard stop for that file, not
// a partial result.
type MissingRequiredColumnsError struct {
	File    string
	Missing []string
}

func (e *MissingRequiredColumnsError) Error() string {
	return fmt.Sprintf("%s is missing required columns: %s", e.File, strings.Join(e.Missing, ", "))
}

// TabNotFoundError reports that a company's destination tab does not exist.
// The sync engine never creates tabs; the operator has to add one.
type TabNotFoundError struct {
	Tab string
}

func (e *TabNotFoundError) Error() string {
	return fmt.Sprintf("tab %q not found in spreadsheet; create it manually and re-run the sync", e.Tab)
}
