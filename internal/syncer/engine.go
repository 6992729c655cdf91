// Package syncer writes per-company cleaned datasets into their destination
// spreadsheet tabs.
package syncer

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sheetsync/internal/model"
	"github.com/sells-group/sheetsync/pkg/sheets"
)

// phoneColumnIndex is the 0-based position of the contact-key column in the
// canonical [Date, Phone Number, Product Name] write order.
const phoneColumnIndex = 1

// Target is one company's sync input: cleaned rows plus the destination
// resolved during processing.
type Target struct {
	Company         string
	Rows            []model.RowRecord
	ExistingTabName string
	ResolvedTabName string
}

// FromProcessing builds sync targets from per-company processing results,
// ordered by company name. Companies with no destination are kept so their
// failure is reported rather than silently dropped.
func FromProcessing(companies map[string]*model.ProcessingResult) []Target {
	names := make([]string, 0, len(companies))
	for name, res := range companies {
		if res == nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	targets := make([]Target, 0, len(names))
	for _, name := range names {
		res := companies[name]
		targets = append(targets, Target{
			Company:         name,
			Rows:            res.Rows,
			ExistingTabName: res.ExistingTabName,
			ResolvedTabName: res.ResolvedTabName,
		})
	}
	return targets
}

// Engine writes company datasets to the spreadsheet one company at a time,
// reusing a single authenticated client. A failure for one company never
// blocks or corrupts the results of the others.
type Engine struct {
	client sheets.Client
}

// NewEngine creates a sync engine on top of a sheets client.
func NewEngine(client sheets.Client) *Engine {
	return &Engine{client: client}
}

// Run syncs every target and returns a per-company result map. The only
// request-level failure is being unable to list the spreadsheet's tabs; every
// later error is captured in that company's result.
func (e *Engine) Run(ctx context.Context, targets []Target, mode model.WriteMode) (map[string]model.SyncResult, error) {
	log := zap.L().With(zap.String("component", "syncer"))

	tabs, err := e.client.ListTabs(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "syncer: list tabs")
	}

	results := make(map[string]model.SyncResult, len(targets))
	var synced, failed int

	for _, target := range targets {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		cLog := log.With(zap.String("company", target.Company))
		start := time.Now()

		res := e.syncCompany(ctx, cLog, tabs, target, mode)
		results[target.Company] = res

		if res.Success {
			cLog.Info("company synced",
				zap.String("tab", res.FinalTabName),
				zap.Int("written", res.RowsWritten),
				zap.Int("appended", res.RowsAppended),
				zap.Duration("elapsed", time.Since(start)),
			)
			synced++
		} else {
			cLog.Error("company sync failed",
				zap.String("error", res.Error),
				zap.Duration("elapsed", time.Since(start)),
			)
			failed++
		}
	}

	log.Info("sync run complete",
		zap.String("mode", string(mode)),
		zap.Int("synced", synced),
		zap.Int("failed", failed),
	)
	return results, nil
}

func (e *Engine) syncCompany(ctx context.Context, log *zap.Logger, tabs []sheets.Tab, target Target, mode model.WriteMode) model.SyncResult {
	tab, err := e.locateTab(ctx, log, tabs, target)
	if err != nil {
		return model.SyncResult{Error: err.Error()}
	}

	switch mode {
	case model.WriteModeAppend:
		appended, err := e.appendRows(ctx, tab.Title, target.Rows)
		if err != nil {
			return model.SyncResult{Error: err.Error()}
		}
		return model.SyncResult{Success: true, FinalTabName: tab.Title, RowsAppended: appended}
	default:
		written, err := e.replaceRows(ctx, log, tab, target.Rows)
		if err != nil {
			return model.SyncResult{Error: err.Error()}
		}
		return model.SyncResult{Success: true, FinalTabName: tab.Title, RowsWritten: written}
	}
}

// locateTab finds the destination tab and applies the conditional rename.
// The returned tab carries the effective title to write to: the resolved name
// after a successful rename, the existing name otherwise. Tabs are never
// created here.
func (e *Engine) locateTab(ctx context.Context, log *zap.Logger, tabs []sheets.Tab, target Target) (sheets.Tab, error) {
	name := target.ResolvedTabName
	if name == "" {
		name = target.ExistingTabName
	}
	if name == "" {
		return sheets.Tab{}, eris.Errorf("no destination tab resolved for %s", target.Company)
	}

	if target.ExistingTabName != "" {
		tab, ok := sheets.FindTab(tabs, target.ExistingTabName)
		if !ok {
			// The tab found during processing has since disappeared; fall
			// back to the resolved name before giving up.
			tab, ok = sheets.FindTab(tabs, target.ResolvedTabName)
			if !ok {
				return sheets.Tab{}, &model.TabNotFoundError{Tab: name}
			}
			return tab, nil
		}

		if target.ResolvedTabName != "" && target.ResolvedTabName != target.ExistingTabName {
			if err := e.client.RenameTab(ctx, tab.ID, target.ResolvedTabName); err != nil {
				log.Warn("tab rename failed, keeping existing name",
					zap.String("from", target.ExistingTabName),
					zap.String("to", target.ResolvedTabName),
					zap.Error(err),
				)
				return tab, nil
			}
			tab.Title = target.ResolvedTabName
		}
		return tab, nil
	}

	tab, ok := sheets.FindTab(tabs, target.ResolvedTabName)
	if !ok {
		return sheets.Tab{}, &model.TabNotFoundError{Tab: target.ResolvedTabName}
	}
	return tab, nil
}

// replaceRows rewrites every data row below the header. Row 1 is never
// touched, so running replace twice with the same dataset leaves the same
// row count.
func (e *Engine) replaceRows(ctx context.Context, log *zap.Logger, tab sheets.Tab, rows []model.RowRecord) (int, error) {
	// A leftover basic filter hides rows from range writes. Sheets without
	// an active filter reject the request; that error is safe to ignore.
	if err := e.client.ClearBasicFilter(ctx, tab.ID); err != nil {
		log.Debug("clear basic filter skipped", zap.Error(err))
	}

	if err := e.client.ClearBelowHeader(ctx, tab.Title); err != nil {
		return 0, eris.Wrap(err, "syncer: clear data rows")
	}

	values := toValues(rows)
	if err := e.client.UpdateRange(ctx, tab.Title, 2, values); err != nil {
		return 0, eris.Wrap(err, "syncer: write rows")
	}

	if err := e.client.FormatColumnAsNumber(ctx, tab.ID, phoneColumnIndex); err != nil {
		return 0, eris.Wrap(err, "syncer: format contact column")
	}

	return len(values), nil
}

// appendRows writes rows starting at the first unused row, never touching
// pre-existing data.
func (e *Engine) appendRows(ctx context.Context, title string, rows []model.RowRecord) (int, error) {
	used, err := e.client.RowCount(ctx, title)
	if err != nil {
		return 0, eris.Wrap(err, "syncer: read used rows")
	}

	values := toValues(rows)
	if err := e.client.UpdateRange(ctx, title, used+1, values); err != nil {
		return 0, eris.Wrap(err, "syncer: append rows")
	}
	return len(values), nil
}

// toValues converts cleaned rows into the canonical write order. Contact keys
// that are pure digits go out as numbers so the column number format applies.
func toValues(rows []model.RowRecord) [][]any {
	values := make([][]any, 0, len(rows))
	for _, row := range rows {
		phone := any(row.Get(model.ColumnPhone))
		if n, err := strconv.ParseInt(row.Get(model.ColumnPhone), 10, 64); err == nil {
			phone = n
		}
		values = append(values, []any{row.Get(model.ColumnDate), phone, row.Get(model.ColumnProduct)})
	}
	return values
}
