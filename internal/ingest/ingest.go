// Package ingest turns uploaded CSV/XLSX exports into ordered row records.
package ingest

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/sheetsync/internal/model"
)

// Options bounds accepted uploads.
type Options struct {
	// MaxFileSize in bytes; 0 disables the check.
	MaxFileSize int64
	// AllowedExtensions without dot, lowercase (e.g. "csv", "xlsx").
	// Empty allows any extension the parser dispatch understands.
	AllowedExtensions []string
}

// Result is the per-file outcome of ingestion. Err is set when the file was
// rejected or unparseable; the rest of the batch is unaffected.
type Result struct {
	File model.FileRows
	Err  error
}

// NamedData is one uploaded file held in memory.
type NamedData struct {
	Name string
	Data []byte
}

// ParseFile parses a single uploaded file into ordered rows. The file name
// picks the parser: .csv or .xlsx.
func ParseFile(name string, data []byte, opts Options) (model.FileRows, error) {
	clean := SanitizeFileName(name)

	if opts.MaxFileSize > 0 && int64(len(data)) > opts.MaxFileSize {
		return model.FileRows{}, eris.Errorf("ingest: %s exceeds size limit (%d bytes)", clean, opts.MaxFileSize)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(clean)), ".")
	if !extensionAllowed(ext, opts.AllowedExtensions) {
		return model.FileRows{}, eris.Errorf("ingest: %s has unsupported file type %q", clean, ext)
	}

	var (
		columns []string
		rows    []model.RowRecord
		err     error
	)
	switch ext {
	case "csv":
		columns, rows, err = parseCSV(data)
	case "xlsx":
		columns, rows, err = parseXLSX(data)
	default:
		return model.FileRows{}, eris.Errorf("ingest: %s has unsupported file type %q", clean, ext)
	}
	if err != nil {
		return model.FileRows{}, eris.Wrapf(err, "ingest: parse %s", clean)
	}

	return model.FileRows{Name: clean, Columns: columns, Rows: rows}, nil
}

// ParseAll parses a batch of uploads concurrently. Results keep input order;
// a failed file occupies its slot with Err set and never aborts siblings.
func ParseAll(ctx context.Context, files []NamedData, opts Options) []Result {
	results := make([]Result, len(files))

	g, _ := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			fr, err := ParseFile(f.Name, f.Data, opts)
			results[i] = Result{File: fr, Err: err}
			if err != nil {
				results[i].File.Name = SanitizeFileName(f.Name)
			}
			return nil
		})
	}
	// Per-file errors are captured in results, never returned.
	_ = g.Wait()

	return results
}

func extensionAllowed(ext string, allowed []string) bool {
	if len(allowed) == 0 {
		return ext == "csv" || ext == "xlsx"
	}
	for _, a := range allowed {
		if ext == strings.ToLower(strings.TrimPrefix(a, ".")) {
			return true
		}
	}
	return false
}

var (
	unsafeChars = regexp.MustCompile(`[^\w\s.-]`)
	multiDots   = regexp.MustCompile(`\.+`)
)

const maxFileNameLen = 255

// SanitizeFileName strips path components and characters unsafe for logging
// or filesystem use, collapsing repeated dots. Empty results become
// "unnamed_file".
func SanitizeFileName(name string) string {
	name = filepath.Base(name)
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.Trim(name, ". ")
	name = multiDots.ReplaceAllString(name, ".")
	if name == "" {
		return "unnamed_file"
	}
	if len(name) > maxFileNameLen {
		ext := filepath.Ext(name)
		keep := maxFileNameLen - len(ext)
		if keep < 0 {
			keep = 0
		}
		name = name[:keep] + ext
	}
	return name
}
