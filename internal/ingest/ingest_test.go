package ingest

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func TestParseFile_CSVBasic(t *testing.T) {
	data := []byte("Date,Phone Number,Message\n01-02-2025,9876543210,hello\n02-02-2025,9123456780,world\n")

	fr, err := ParseFile("orders.csv", data, Options{})
	require.NoError(t, err)

	assert.Equal(t, "orders.csv", fr.Name)
	assert.Equal(t, []string{"Date", "Phone Number", "Message"}, fr.Columns)
	require.Len(t, fr.Rows, 2)
	assert.Equal(t, "01-02-2025", fr.Rows[0]["Date"])
	assert.Equal(t, "world", fr.Rows[1]["Message"])
}

func TestParseFile_CSVStripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Name,City\nalice,pune\n")...)

	fr, err := ParseFile("export.csv", data, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "City"}, fr.Columns)
	assert.Equal(t, "alice", fr.Rows[0]["Name"])
}

func TestParseFile_CSVWindows1252(t *testing.T) {
	// 0xE9 is é in windows-1252 but invalid UTF-8 on its own.
	data := []byte("Name,Note\ncaf\xe9,ok\n")

	fr, err := ParseFile("export.csv", data, Options{})
	require.NoError(t, err)
	assert.Equal(t, "café", fr.Rows[0]["Name"])
}

func TestParseFile_CSVRaggedRows(t *testing.T) {
	data := []byte("a,b,c\n1,2\n4,5,6,7\n")

	fr, err := ParseFile("ragged.csv", data, Options{})
	require.NoError(t, err)
	require.Len(t, fr.Rows, 2)

	// Short row: missing trailing cell stays absent.
	_, ok := fr.Rows[0]["c"]
	assert.False(t, ok)
	// Long row: cells beyond the header are dropped.
	assert.Equal(t, "6", fr.Rows[1]["c"])
	assert.Len(t, fr.Rows[1], 3)
}

func TestParseFile_CSVHeaderNormalization(t *testing.T) {
	data := []byte(" Name ,,Name\nalice,x,bob\n")

	fr, err := ParseFile("dup.csv", data, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Column 2", "Name 3"}, fr.Columns)
	assert.Equal(t, "alice", fr.Rows[0]["Name"])
	assert.Equal(t, "bob", fr.Rows[0]["Name 3"])
}

func TestParseFile_CSVSkipsBlankRows(t *testing.T) {
	data := []byte("a,b\n1,2\n,\n  ,  \n3,4\n")

	fr, err := ParseFile("blanks.csv", data, Options{})
	require.NoError(t, err)
	require.Len(t, fr.Rows, 2)
	assert.Equal(t, "3", fr.Rows[1]["a"])
}

func TestParseFile_CSVEmpty(t *testing.T) {
	_, err := ParseFile("empty.csv", nil, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty file")
}

func TestParseFile_XLSX(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)

	header := sheet.AddRow()
	header.AddCell().SetString("Date")
	header.AddCell().SetString("Phone Number")

	row := sheet.AddRow()
	row.AddCell().SetString("01-02-2025")
	row.AddCell().SetString("9876543210")

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	fr, err := ParseFile("orders.xlsx", buf.Bytes(), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Phone Number"}, fr.Columns)
	require.Len(t, fr.Rows, 1)
	assert.Equal(t, "9876543210", fr.Rows[0]["Phone Number"])
}

func TestParseFile_XLSXNotAWorkbook(t *testing.T) {
	_, err := ParseFile("fake.xlsx", []byte("not a zip"), Options{})
	require.Error(t, err)
}

func TestParseFile_SizeLimit(t *testing.T) {
	data := []byte("a,b\n1,2\n")
	_, err := ParseFile("big.csv", data, Options{MaxFileSize: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "size limit")
}

func TestParseFile_ExtensionRejected(t *testing.T) {
	_, err := ParseFile("notes.txt", []byte("hello"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")

	_, err = ParseFile("orders.csv", []byte("a\n1\n"), Options{AllowedExtensions: []string{"xlsx"}})
	require.Error(t, err)
}

func TestParseAll_OrderAndIsolation(t *testing.T) {
	files := []NamedData{
		{Name: "one.csv", Data: []byte("a\n1\n")},
		{Name: "bad.txt", Data: []byte("nope")},
		{Name: "two.csv", Data: []byte("b\n2\n")},
	}

	results := ParseAll(context.Background(), files, Options{})
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, "one.csv", results[0].File.Name)

	assert.Error(t, results[1].Err)
	assert.Equal(t, "bad.txt", results[1].File.Name)

	assert.NoError(t, results[2].Err)
	assert.Equal(t, "2", results[2].File.Rows[0]["b"])
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"orders.csv", "orders.csv"},
		{"../../etc/passwd", "passwd"},
		{"/tmp/upload/report.xlsx", "report.xlsx"},
		{"we!rd@name#.csv", "werdname.csv"},
		{"dots...everywhere..csv", "dots.everywhere.csv"},
		{"...", "unnamed_file"},
		{"", "unnamed_file"},
		{"file with spaces.csv", "file with spaces.csv"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SanitizeFileName(tc.in), "input %q", tc.in)
	}
}

func TestSanitizeFileName_LongName(t *testing.T) {
	long := strings.Repeat("a", 300) + ".csv"
	got := SanitizeFileName(long)
	assert.LessOrEqual(t, len(got), 255)
	assert.True(t, strings.HasSuffix(got, ".csv"))
}
