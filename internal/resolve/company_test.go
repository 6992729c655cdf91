package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/sheetsync/internal/model"
)

var testCompanies = []string{"Acme", "Meddeygo", "Zenith"}

func TestDetectCompany_Filename(t *testing.T) {
	file := model.FileRows{Name: "28_01_2025_meddeygo_orders.csv"}

	a := DetectCompany(file, testCompanies)
	assert.Equal(t, "Meddeygo", a.Company)
	assert.Equal(t, 50, a.Confidence)
	assert.Equal(t, model.EvidenceFilename, a.EvidenceSource)
}

func TestDetectCompany_Data(t *testing.T) {
	file := model.FileRows{
		Name:    "orders.csv",
		Columns: []string{"Message"},
		Rows: []model.RowRecord{
			{"Message": "thanks"},
			{"Message": "Your Zenith order is placed"},
		},
	}

	a := DetectCompany(file, testCompanies)
	assert.Equal(t, "Zenith", a.Company)
	assert.Equal(t, 20, a.Confidence)
	assert.Equal(t, model.EvidenceData, a.EvidenceSource)
}

func TestDetectCompany_FilenamePlusData(t *testing.T) {
	file := model.FileRows{
		Name:    "acme_export.csv",
		Columns: []string{"Message"},
		Rows:    []model.RowRecord{{"Message": "ACME order confirmed"}},
	}

	a := DetectCompany(file, testCompanies)
	assert.Equal(t, "Acme", a.Company)
	assert.Equal(t, 70, a.Confidence)
	// Filename evidence is the dominant source when both fire.
	assert.Equal(t, model.EvidenceFilename, a.EvidenceSource)
}

func TestDetectCompany_DefaultFallback(t *testing.T) {
	file := model.FileRows{
		Name:    "export.csv",
		Columns: []string{"Message"},
		Rows:    []model.RowRecord{{"Message": "nothing to see"}},
	}

	a := DetectCompany(file, testCompanies)
	assert.Equal(t, "Acme", a.Company)
	assert.Equal(t, 10, a.Confidence)
	assert.Equal(t, model.EvidenceDefault, a.EvidenceSource)
}

func TestDetectCompany_TieKeepsConfiguredOrder(t *testing.T) {
	// Both companies appear in the filename; the earlier configured one wins.
	file := model.FileRows{Name: "acme_meddeygo.csv"}

	a := DetectCompany(file, testCompanies)
	assert.Equal(t, "Acme", a.Company)

	a = DetectCompany(file, []string{"Meddeygo", "Acme"})
	assert.Equal(t, "Meddeygo", a.Company)
}

func TestDetectCompany_DataScanStopsAt50(t *testing.T) {
	rows := make([]model.RowRecord, 60)
	for i := range rows {
		rows[i] = model.RowRecord{"Message": "hello"}
	}
	rows[55] = model.RowRecord{"Message": "Zenith order"} // beyond the window

	file := model.FileRows{Name: "export.csv", Columns: []string{"Message"}, Rows: rows}
	a := DetectCompany(file, testCompanies)
	assert.Equal(t, model.EvidenceDefault, a.EvidenceSource)
	assert.Equal(t, "Acme", a.Company)
}

func TestFindCompanyTab(t *testing.T) {
	tabs := []string{"JAN 5 Acme", "OCT 5-6 Meddeygo", "Scratch"}

	tab, ok := FindCompanyTab(tabs, "meddeygo")
	assert.True(t, ok)
	assert.Equal(t, "OCT 5-6 Meddeygo", tab)

	_, ok = FindCompanyTab(tabs, "Zenith")
	assert.False(t, ok)
}
