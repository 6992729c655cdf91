package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sheetsync/internal/ingest"
	"github.com/sells-group/sheetsync/internal/model"
	"github.com/sells-group/sheetsync/internal/process"
)

func TestParseOverrides(t *testing.T) {
	out, err := parseOverrides([]string{"orders.csv=Acme", " messages.xlsx = Meddeygo "})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"orders.csv":    "Acme",
		"messages.xlsx": "Meddeygo",
	}, out)
}

func TestParseOverrides_Empty(t *testing.T) {
	out, err := parseOverrides(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestParseOverrides_Malformed(t *testing.T) {
	cases := []string{"orders.csv", "=Acme", "orders.csv=", "  =  "}
	for _, pair := range cases {
		_, err := parseOverrides([]string{pair})
		assert.Error(t, err, "pair %q should be rejected", pair)
	}
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("a"), 0o644))

	// The same file matched by two patterns is read once.
	out, err := collectFiles([]string{
		filepath.Join(dir, "*.csv"),
		filepath.Join(dir, "a.csv"),
	})
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, "a.csv", out[0].Name)
	assert.Equal(t, "b.csv", out[1].Name)
	assert.Equal(t, []byte("a"), out[0].Data)
}

func TestCollectFiles_NoMatch(t *testing.T) {
	_, err := collectFiles([]string{filepath.Join(t.TempDir(), "*.csv")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files match")
}

func TestWithProductColumn(t *testing.T) {
	cols := withProductColumn([]string{"Phone Number", "Message"})
	assert.Equal(t, []string{"Phone Number", "Message", "Product Name"}, cols)

	// Already canonical: unchanged.
	same := withProductColumn(cols)
	assert.Equal(t, cols, same)
}

func TestNewRunSummary(t *testing.T) {
	uploads := []ingest.NamedData{{Name: "orders.csv"}, {Name: "messages.csv"}}
	out := &process.Output{
		Companies: map[string]*model.ProcessingResult{
			"Acme": {
				Company:         "Acme",
				RowCount:        12,
				FilteredCount:   3,
				ExistingTabName: "JAN 5 Acme",
				ResolvedTabName: "JAN 29 Acme",
				DateSource:      model.DateSourceRows,
			},
		},
		FileErrors: map[string]string{"messages.csv": "missing required columns"},
	}

	s := newRunSummary(model.WriteModeAppend, uploads, out)

	assert.Equal(t, "append", s.Mode)
	assert.Equal(t, []string{"orders.csv", "messages.csv"}, s.Files)
	assert.Equal(t, map[string]string{"messages.csv": "missing required columns"}, s.FileErrors)

	require.Contains(t, s.Companies, "Acme")
	acme := s.Companies["Acme"]
	assert.Equal(t, 12, acme.Rows)
	assert.Equal(t, 3, acme.Filtered)
	assert.Equal(t, "JAN 29 Acme", acme.ResolvedTabName)
	assert.Equal(t, "csv", acme.DateSource)
	assert.Nil(t, s.Results)
}

func TestContainsCompany(t *testing.T) {
	companies := []string{"Acme", "Meddeygo"}
	assert.True(t, containsCompany(companies, "Acme"))
	assert.False(t, containsCompany(companies, "acme"))
	assert.False(t, containsCompany(companies, "Beta"))
}
