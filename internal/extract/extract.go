// Package extract derives product names from free-text message columns
// using weighted pattern rules.
package extract

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/sheetsync/internal/clean"
	"github.com/sells-group/sheetsync/internal/model"
)

// textColumnNames are matched case-insensitively against headers; the first
// hit is the free-text column.
var textColumnNames = []string{"text", "message", "body", "content", "msg"}

// contactColumnNames identify the contact-key column for the
// extraction-stage dedupe pass.
var contactColumnNames = []string{"phone", "mobile", "contact", "phone number"}

const (
	minCandidateLen = 5
	maxCandidateLen = 150

	// Candidates that still carry an order/tracking reference lose 30
	// points but never fall below 50.
	idPhrasePenalty = 30
	idPenaltyFloor  = 50
)

// candidateStoplist rejects bare status words that pattern rules sometimes
// capture on their own.
var candidateStoplist = map[string]bool{
	"order":     true,
	"orders":    true,
	"tracking":  true,
	"shipment":  true,
	"shipped":   true,
	"delivery":  true,
	"delivered": true,
	"cancelled": true,
	"status":    true,
	"update":    true,
	"confirmed": true,
}

var (
	orderIDPhrase = regexp.MustCompile(`(?i)\b(?:order|tracking)\s*(?:id|no\.?|number|#)|#\s*\d{3,}`)
	numberUnit    = regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s?(?:ml|ltr|litres?|liters?|l|kg|gms?|grams?|g|mg|pcs?|pieces?|packs?|tablets?|capsules?|sets?|combos?|bottles?|boxes?)\b`)
	bareUnit      = regexp.MustCompile(`(?i)\b(?:pack|combo|set|bottle|box)\b`)
	edgePunct     = ".,:;!?\"'()[]{}<>*-_/` \t"
)

const (
	numberUnitBoost = 8
	bareUnitBoost   = 5
)

// Result reports the outcome of extraction over one file. The counters are
// internally consistent: FinalCount = ExtractedCount - DuplicatesRemoved -
// StatusFiltered.
type Result struct {
	File              string            `json:"file"`
	Rows              []model.RowRecord `json:"rows"`
	TotalRows         int               `json:"total_rows"`
	ExtractedCount    int               `json:"extracted_count"`
	DuplicatesRemoved int               `json:"duplicates_removed"`
	StatusFiltered    int               `json:"filtered_status_count"`
	FinalCount        int               `json:"final_count"`
}

// Engine runs weighted pattern extraction over row records.
type Engine struct {
	rules         []Rule
	minConfidence int
}

// NewEngine builds an engine. Passing nil rules selects the built-in set;
// minConfidence <= 0 defaults to 60.
func NewEngine(rules []Rule, minConfidence int) *Engine {
	if rules == nil {
		rules = DefaultRules()
	}
	if minConfidence <= 0 {
		minConfidence = 60
	}
	return &Engine{rules: rules, minConfidence: minConfidence}
}

// ExtractFile extracts product names for every row of one file, then
// deduplicates by contact key and drops rows whose message indicates a
// terminal status. Returns *model.NoTextColumnError when the file has no
// recognizable text column.
func (e *Engine) ExtractFile(file model.FileRows) (*Result, error) {
	textCol, ok := findColumn(file.Columns, textColumnNames)
	if !ok {
		return nil, &model.NoTextColumnError{File: file.Name}
	}

	res := &Result{File: file.Name, TotalRows: len(file.Rows)}

	extracted := make([]model.RowRecord, 0, len(file.Rows))
	for _, row := range file.Rows {
		name, score, found := e.bestCandidate(row.Get(textCol))
		if !found || score < e.minConfidence {
			continue
		}
		out := row.Clone()
		out[model.ColumnProduct] = name
		extracted = append(extracted, out)
	}
	res.ExtractedCount = len(extracted)

	rows := extracted
	if contactCol, ok := findColumn(file.Columns, contactColumnNames); ok {
		rows, res.DuplicatesRemoved = clean.DedupeByContact(rows, contactCol)
	}

	final := rows[:0]
	for _, row := range rows {
		if isTerminalStatus(row.Get(textCol)) {
			res.StatusFiltered++
			continue
		}
		final = append(final, row)
	}
	res.Rows = final
	res.FinalCount = len(final)

	zap.L().Debug("extract: file done",
		zap.String("file", file.Name),
		zap.Int("total", res.TotalRows),
		zap.Int("extracted", res.ExtractedCount),
		zap.Int("duplicates", res.DuplicatesRemoved),
		zap.Int("status_filtered", res.StatusFiltered),
		zap.Int("final", res.FinalCount),
	)
	return res, nil
}

// bestCandidate evaluates every rule against the text and keeps the
// highest-scoring cleaned candidate. Max-by-score, not first-match, so the
// strongest evidence wins regardless of rule order.
func (e *Engine) bestCandidate(text string) (string, int, bool) {
	if strings.TrimSpace(text) == "" {
		return "", 0, false
	}

	bestName, bestScore := "", -1
	for _, rule := range e.rules {
		m := rule.Pattern.FindStringSubmatch(text)
		if m == nil || len(m) < 2 {
			continue
		}
		name, score, ok := scoreCandidate(m[1], rule.Weight)
		if ok && score > bestScore {
			bestName, bestScore = name, score
		}
	}
	if bestScore < 0 {
		return "", 0, false
	}
	return bestName, bestScore, true
}

// scoreCandidate post-processes a raw capture and adjusts its confidence.
func scoreCandidate(raw string, weight int) (string, int, bool) {
	name := strings.Join(strings.Fields(raw), " ")
	name = strings.Trim(name, edgePunct)
	if len(name) < minCandidateLen || len(name) > maxCandidateLen {
		return "", 0, false
	}
	if candidateStoplist[strings.ToLower(name)] {
		return "", 0, false
	}

	score := weight
	if orderIDPhrase.MatchString(name) {
		score -= idPhrasePenalty
		if score < idPenaltyFloor {
			score = idPenaltyFloor
		}
	}
	switch {
	case numberUnit.MatchString(name):
		score += numberUnitBoost
	case bareUnit.MatchString(name):
		score += bareUnitBoost
	}
	if score > 100 {
		score = 100
	}
	return name, score, true
}

var terminalStatuses = []string{"accepted", "delivered"}

func isTerminalStatus(text string) bool {
	lower := strings.ToLower(text)
	for _, s := range terminalStatuses {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// findColumn returns the first header that case-insensitively equals one of
// the wanted names, preserving header order.
func findColumn(columns []string, wanted []string) (string, bool) {
	for _, col := range columns {
		lower := strings.ToLower(strings.TrimSpace(col))
		for _, w := range wanted {
			if lower == w {
				return col, true
			}
		}
	}
	return "", false
}
