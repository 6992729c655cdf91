// Package process groups uploaded files by company, runs the cleaning
// pipeline over each, and resolves every company's destination tab.
package process

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/sheetsync/internal/clean"
	"github.com/sells-group/sheetsync/internal/model"
	"github.com/sells-group/sheetsync/internal/resolve"
)

// Processor turns assigned files into per-company ProcessingResults. Results
// are recomputed fresh on every Run; nothing is mutated incrementally.
type Processor struct {
	companies []string
	now       func() time.Time
}

// New creates a Processor over the configured company list.
func New(companies []string) *Processor {
	return &Processor{companies: companies, now: time.Now}
}

// WithNow fixes the clock for testing the tab-title year fallback.
func (p *Processor) WithNow(fn func() time.Time) *Processor {
	p.now = fn
	return p
}

// Output carries per-company results alongside per-file failures. A file
// failure (missing required columns, unknown assignment) never blocks the
// other files or companies in the batch.
type Output struct {
	Companies  map[string]*model.ProcessingResult `json:"companies"`
	FileErrors map[string]string                  `json:"file_errors,omitempty"`
}

// Run cleans every assigned file and builds one ProcessingResult per company
// that contributed at least one cleanable file. existingTabs are the current
// spreadsheet tab titles, used both for destination lookup and as the
// last-resort date source.
func (p *Processor) Run(files []model.FileRows, assignments map[string]string, existingTabs []string) *Output {
	log := zap.L().With(zap.String("component", "process"))
	out := &Output{
		Companies:  make(map[string]*model.ProcessingResult),
		FileErrors: make(map[string]string),
	}

	// Group files per company, keeping upload order within each group.
	groups := make(map[string][]model.FileRows)
	var order []string
	for _, file := range files {
		company, ok := assignments[file.Name]
		if !ok {
			out.FileErrors[file.Name] = fmt.Sprintf("no company assigned to %s", file.Name)
			continue
		}
		if !p.knownCompany(company) {
			out.FileErrors[file.Name] = fmt.Sprintf("unknown company %q for %s", company, file.Name)
			continue
		}
		if _, seen := groups[company]; !seen {
			order = append(order, company)
		}
		groups[company] = append(groups[company], file)
	}

	for _, company := range order {
		result := p.processCompany(company, groups[company], existingTabs, out.FileErrors)
		if result == nil {
			continue
		}
		out.Companies[company] = result

		log.Info("company processed",
			zap.String("company", company),
			zap.Int("rows", result.RowCount),
			zap.Int("filtered", result.FilteredCount),
			zap.String("existing_tab", result.ExistingTabName),
			zap.String("resolved_tab", result.ResolvedTabName),
			zap.String("date_source", string(result.DateSource)),
		)
	}

	return out
}

// processCompany cleans and combines one company's files. Returns nil when
// every file failed cleaning; the failures are already recorded per file.
func (p *Processor) processCompany(company string, files []model.FileRows, existingTabs []string, fileErrors map[string]string) *model.ProcessingResult {
	var combined []model.RowRecord
	var fileNames []string
	filtered := 0
	cleanedAny := false

	for _, file := range files {
		res, err := clean.File(file)
		if err != nil {
			fileErrors[file.Name] = err.Error()
			continue
		}
		cleanedAny = true
		combined = append(combined, res.Rows...)
		fileNames = append(fileNames, file.Name)
		filtered += res.StatusFiltered
	}
	if !cleanedAny {
		return nil
	}

	// Second dedupe pass catches contact keys repeated across files.
	combined, crossDupes := clean.DedupeByContact(combined, model.ColumnPhone)
	if crossDupes > 0 {
		zap.L().Debug("process: cross-file duplicates removed",
			zap.String("company", company),
			zap.Int("removed", crossDupes),
		)
	}

	existingTab, _ := resolve.FindCompanyTab(existingTabs, company)

	dates, source, found := resolve.ResolveDates(resolve.Evidence{
		Rows:       combined,
		DateColumn: model.ColumnDate,
		FileNames:  fileNames,
		TabTitle:   existingTab,
		Now:        p.now(),
	})

	var computed string
	if found {
		computed = resolve.ComputeTabName(dates, company)
	}

	return &model.ProcessingResult{
		Company:         company,
		Rows:            combined,
		RowCount:        len(combined),
		FilteredCount:   filtered,
		ExistingTabName: existingTab,
		ResolvedTabName: resolve.SelectTabName(existingTab, computed),
		ResolvedDates:   dates,
		DateSource:      source,
	}
}

func (p *Processor) knownCompany(name string) bool {
	for _, c := range p.companies {
		if c == name {
			return true
		}
	}
	return false
}
