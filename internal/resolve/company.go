// Package resolve determines where a file's data belongs: which company owns
// it, which dates it covers, and which spreadsheet tab it targets.
package resolve

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/sheetsync/internal/model"
)

const (
	filenameScore = 50
	dataScore     = 20

	// dataScanRows bounds how many rows are searched for company evidence.
	dataScanRows = 50

	defaultConfidence = 10
	maxConfidence     = 100
)

// DetectCompany scores every configured company against a file and returns
// the best assignment. Filename evidence outweighs data evidence; ties
// resolve to the earlier company in the configured order. With no evidence
// at all, the first configured company is assigned at low confidence.
func DetectCompany(file model.FileRows, companies []string) model.CompanyAssignment {
	best := model.CompanyAssignment{
		FileName:       file.Name,
		Company:        companies[0],
		Confidence:     defaultConfidence,
		EvidenceSource: model.EvidenceDefault,
	}

	lowerName := strings.ToLower(file.Name)
	bestScore := 0

	for _, company := range companies {
		needle := strings.ToLower(company)
		score := 0
		source := model.EvidenceDefault

		if strings.Contains(lowerName, needle) {
			score += filenameScore
			source = model.EvidenceFilename
		}
		if rowsContain(file, needle) {
			score += dataScore
			if source == model.EvidenceDefault {
				source = model.EvidenceData
			}
		}

		// Strictly greater keeps the earlier company on ties.
		if score > bestScore {
			bestScore = score
			best.Company = company
			best.Confidence = min(maxConfidence, score)
			best.EvidenceSource = source
		}
	}

	zap.L().Debug("resolve: company detected",
		zap.String("file", file.Name),
		zap.String("company", best.Company),
		zap.Int("confidence", best.Confidence),
		zap.String("evidence", string(best.EvidenceSource)),
	)
	return best
}

// rowsContain reports whether the company name appears in any of the first
// dataScanRows rows, checking cells in header order and stopping at the
// first hit.
func rowsContain(file model.FileRows, needle string) bool {
	limit := len(file.Rows)
	if limit > dataScanRows {
		limit = dataScanRows
	}
	for _, row := range file.Rows[:limit] {
		for _, col := range file.Columns {
			if strings.Contains(strings.ToLower(row.Get(col)), needle) {
				return true
			}
		}
	}
	return false
}

// FindCompanyTab returns the first existing tab whose title contains the
// company name, case-insensitively. ok=false when the company has no tab
// yet.
func FindCompanyTab(tabs []string, company string) (string, bool) {
	needle := strings.ToLower(company)
	for _, tab := range tabs {
		if strings.Contains(strings.ToLower(tab), needle) {
			return tab, true
		}
	}
	return "", false
}
