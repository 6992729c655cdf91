package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/sheetsync/pkg/sheets"
)

func TestFormatTabs(t *testing.T) {
	tabs := []sheets.Tab{
		{ID: 0, Title: "JAN 5 Acme", Index: 0},
		{ID: 812, Title: "OCT 12-14 Meddeygo", Index: 1},
	}
	counts := []int64{1504, 12}

	var buf bytes.Buffer
	formatTabs(&buf, tabs, counts)

	output := buf.String()
	assert.Contains(t, output, "TITLE")
	assert.Contains(t, output, "JAN 5 Acme")
	assert.Contains(t, output, "OCT 12-14 Meddeygo")
	assert.Contains(t, output, "1504")
	assert.Contains(t, output, "812")
}

func TestFormatTabs_UnreadableCount(t *testing.T) {
	tabs := []sheets.Tab{{ID: 3, Title: "FEB 2 Beta", Index: 0}}
	counts := []int64{-1}

	var buf bytes.Buffer
	formatTabs(&buf, tabs, counts)

	output := buf.String()
	assert.Contains(t, output, "FEB 2 Beta")
	assert.Contains(t, output, "-") // unreadable rows render as "-"
}
