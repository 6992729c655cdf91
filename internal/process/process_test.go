package process

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sheetsync/internal/model"
)

var companies = []string{"Acme", "Meddeygo"}

func fixedNow() time.Time {
	return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
}

func ordersFile(name string, rows ...model.RowRecord) model.FileRows {
	return model.FileRows{
		Name:    name,
		Columns: []string{"Date", "Phone", "Product"},
		Rows:    rows,
	}
}

func TestRun_SingleCompany(t *testing.T) {
	p := New(companies).WithNow(fixedNow)

	out := p.Run(
		[]model.FileRows{ordersFile("acme.csv",
			model.RowRecord{"Date": "28-01-2025", "Phone": "111", "Product": "Serum"},
			model.RowRecord{"Date": "28-01-2025", "Phone": "222", "Product": "Cream"},
		)},
		map[string]string{"acme.csv": "Acme"},
		nil,
	)

	require.Empty(t, out.FileErrors)
	require.Contains(t, out.Companies, "Acme")

	res := out.Companies["Acme"]
	assert.Equal(t, 2, res.RowCount)
	assert.Equal(t, model.DateSourceRows, res.DateSource)
	assert.Equal(t, "JAN 29 Acme", res.ResolvedTabName)
	assert.Empty(t, res.ExistingTabName)
	assert.True(t, res.Syncable())
}

func TestRun_IndependentDateResolutionPerCompany(t *testing.T) {
	p := New(companies).WithNow(fixedNow)

	// First file: no usable Date values, date comes from its name. Second
	// file: date comes from row data. Each company resolves independently.
	out := p.Run(
		[]model.FileRows{
			ordersFile("28_01_2025_Acme.csv",
				model.RowRecord{"Date": "2025-01-28", "Phone": "111", "Product": "Serum"},
			),
			ordersFile("meddeygo.csv",
				model.RowRecord{"Date": "05-02-2025", "Phone": "222", "Product": "Cream"},
			),
		},
		map[string]string{"28_01_2025_Acme.csv": "Acme", "meddeygo.csv": "Meddeygo"},
		nil,
	)

	require.Len(t, out.Companies, 2)
	assert.Equal(t, model.DateSourceRows, out.Companies["Acme"].DateSource)
	assert.Equal(t, "JAN 29 Acme", out.Companies["Acme"].ResolvedTabName)
	assert.Equal(t, model.DateSourceRows, out.Companies["Meddeygo"].DateSource)
	assert.Equal(t, "FEB 6 Meddeygo", out.Companies["Meddeygo"].ResolvedTabName)
}

func TestRun_FilenameDateWhenRowsEmpty(t *testing.T) {
	p := New(companies).WithNow(fixedNow)

	// Date column present but only sentinel values: admission drops those
	// rows, so the company falls back to the filename date. One row keeps a
	// non-date string alive to prove lenient preservation doesn't feed the
	// resolver garbage.
	out := p.Run(
		[]model.FileRows{ordersFile("28_01_2025_Acme.csv",
			model.RowRecord{"Date": "soon", "Phone": "111", "Product": "Serum"},
		)},
		map[string]string{"28_01_2025_Acme.csv": "Acme"},
		nil,
	)

	res := out.Companies["Acme"]
	require.NotNil(t, res)
	assert.Equal(t, model.DateSourceFilename, res.DateSource)
	assert.Equal(t, "JAN 29 Acme", res.ResolvedTabName)
}

func TestRun_TabTitleIsLastResort(t *testing.T) {
	p := New(companies).WithNow(fixedNow)

	out := p.Run(
		[]model.FileRows{ordersFile("orders.csv",
			model.RowRecord{"Date": "pending", "Phone": "111", "Product": "Serum"},
		)},
		map[string]string{"orders.csv": "Meddeygo"},
		[]string{"OCT 5-6 Meddeygo"},
	)

	res := out.Companies["Meddeygo"]
	require.NotNil(t, res)
	assert.Equal(t, "OCT 5-6 Meddeygo", res.ExistingTabName)
	assert.Equal(t, model.DateSourceTab, res.DateSource)
	// Oct 6 of the fixed current year, plus one day.
	assert.Equal(t, "OCT 7 Meddeygo", res.ResolvedTabName)
}

func TestRun_NoEvidenceKeepsExistingTab(t *testing.T) {
	p := New(companies).WithNow(fixedNow)

	out := p.Run(
		[]model.FileRows{ordersFile("orders.csv",
			model.RowRecord{"Date": "pending", "Phone": "111", "Product": "Serum"},
		)},
		map[string]string{"orders.csv": "Acme"},
		[]string{"Scratch Acme"}, // existing tab with no parseable date
	)

	res := out.Companies["Acme"]
	require.NotNil(t, res)
	assert.Empty(t, res.DateSource)
	assert.Empty(t, res.ResolvedDates)
	assert.Equal(t, "Scratch Acme", res.ResolvedTabName)
	assert.True(t, res.Syncable())
}

func TestRun_NoEvidenceNoTabNotSyncable(t *testing.T) {
	p := New(companies).WithNow(fixedNow)

	out := p.Run(
		[]model.FileRows{ordersFile("orders.csv",
			model.RowRecord{"Date": "pending", "Phone": "111", "Product": "Serum"},
		)},
		map[string]string{"orders.csv": "Acme"},
		nil,
	)

	res := out.Companies["Acme"]
	require.NotNil(t, res)
	assert.Empty(t, res.ResolvedTabName)
	assert.False(t, res.Syncable())
}

func TestRun_PerFileErrorIsolation(t *testing.T) {
	p := New(companies).WithNow(fixedNow)

	bad := model.FileRows{Name: "bad.csv", Columns: []string{"Notes"}, Rows: []model.RowRecord{{"Notes": "x"}}}
	good := ordersFile("acme.csv", model.RowRecord{"Date": "28-01-2025", "Phone": "111", "Product": "Serum"})

	out := p.Run(
		[]model.FileRows{bad, good},
		map[string]string{"bad.csv": "Meddeygo", "acme.csv": "Acme"},
		nil,
	)

	// The bad file reports its missing columns; the good one still processes.
	require.Contains(t, out.FileErrors, "bad.csv")
	assert.Contains(t, out.FileErrors["bad.csv"], "missing required columns")
	assert.NotContains(t, out.Companies, "Meddeygo")
	assert.Contains(t, out.Companies, "Acme")
}

func TestRun_MixedFilesOneCompany(t *testing.T) {
	p := New(companies).WithNow(fixedNow)

	bad := model.FileRows{Name: "bad.csv", Columns: []string{"Notes"}, Rows: []model.RowRecord{{"Notes": "x"}}}
	good := ordersFile("good.csv", model.RowRecord{"Date": "28-01-2025", "Phone": "111", "Product": "Serum"})

	out := p.Run(
		[]model.FileRows{bad, good},
		map[string]string{"bad.csv": "Acme", "good.csv": "Acme"},
		nil,
	)

	// The company survives on its good file alone.
	require.Contains(t, out.Companies, "Acme")
	assert.Equal(t, 1, out.Companies["Acme"].RowCount)
	assert.Contains(t, out.FileErrors, "bad.csv")
}

func TestRun_CrossFileDedupe(t *testing.T) {
	p := New(companies).WithNow(fixedNow)

	out := p.Run(
		[]model.FileRows{
			ordersFile("one.csv", model.RowRecord{"Date": "28-01-2025", "Phone": "98765 43210", "Product": "Serum"}),
			ordersFile("two.csv", model.RowRecord{"Date": "29-01-2025", "Phone": "+98765-43210", "Product": "Cream"}),
		},
		map[string]string{"one.csv": "Acme", "two.csv": "Acme"},
		nil,
	)

	res := out.Companies["Acme"]
	require.NotNil(t, res)
	require.Equal(t, 1, res.RowCount)
	assert.Equal(t, "Serum", res.Rows[0][model.ColumnProduct])
}

func TestRun_UnknownAssignments(t *testing.T) {
	p := New(companies).WithNow(fixedNow)

	out := p.Run(
		[]model.FileRows{
			ordersFile("a.csv", model.RowRecord{"Date": "28-01-2025"}),
			ordersFile("b.csv", model.RowRecord{"Date": "28-01-2025"}),
		},
		map[string]string{"a.csv": "Nobody"},
		nil,
	)

	assert.Contains(t, out.FileErrors["a.csv"], "unknown company")
	assert.Contains(t, out.FileErrors["b.csv"], "no company assigned")
	assert.Empty(t, out.Companies)
}

func TestRun_ExistingTabTriggersRenameTarget(t *testing.T) {
	p := New(companies).WithNow(fixedNow)

	out := p.Run(
		[]model.FileRows{ordersFile("acme.csv",
			model.RowRecord{"Date": "28-01-2025", "Phone": "111", "Product": "Serum"},
		)},
		map[string]string{"acme.csv": "Acme"},
		[]string{"JAN 5 Acme"},
	)

	res := out.Companies["Acme"]
	require.NotNil(t, res)
	assert.Equal(t, "JAN 5 Acme", res.ExistingTabName)
	assert.Equal(t, "JAN 29 Acme", res.ResolvedTabName)
}
