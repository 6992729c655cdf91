package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sheetsync/internal/extract"
	"github.com/sells-group/sheetsync/internal/ingest"
	"github.com/sells-group/sheetsync/internal/model"
	"github.com/sells-group/sheetsync/internal/process"
	"github.com/sells-group/sheetsync/internal/resolve"
	"github.com/sells-group/sheetsync/internal/syncer"
)

var (
	runFiles     []string
	runMode      string
	runOverrides []string
	runDryRun    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline over local export files",
	Long: `Parses the given CSV/XLSX exports, extracts product names from message
exports, detects each file's company, cleans and deduplicates the rows, and
syncs them into the company tabs of the configured spreadsheet.

Examples:
  # Replace every matched company tab's data rows
  sheetsync run --files 'exports/*.csv' --mode replace

  # Append without touching existing rows, forcing one file's company
  sheetsync run --files orders.xlsx --mode append --company-override orders.xlsx=Acme

  # Stop after processing and print what would be synced
  sheetsync run --files 'exports/*' --dry-run`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		mode, err := model.ParseWriteMode(runMode)
		if err != nil {
			return err
		}
		overrides, err := parseOverrides(runOverrides)
		if err != nil {
			return err
		}
		for file, company := range overrides {
			if !containsCompany(cfg.Companies, company) {
				return eris.Errorf("run: unknown company %q in --company-override %s", company, file)
			}
		}

		// Ingest.
		uploads, err := collectFiles(runFiles)
		if err != nil {
			return err
		}

		files := make([]model.FileRows, 0, len(uploads))
		for _, res := range ingest.ParseAll(ctx, uploads, ingest.Options{
			MaxFileSize:       int64(cfg.Upload.MaxFileSizeMB) << 20,
			AllowedExtensions: cfg.Upload.AllowedExtensions,
		}) {
			if res.Err != nil {
				zap.L().Warn("run: file skipped", zap.String("file", res.File.Name), zap.Error(res.Err))
				continue
			}
			files = append(files, res.File)
		}
		if len(files) == 0 {
			return eris.New("run: no parseable files")
		}
		zap.L().Info("ingest complete", zap.Int("files", len(files)))

		// Extract product names from message exports. Order exports have no
		// text column and pass through unchanged.
		var rules []extract.Rule
		if cfg.Extract.RulesFile != "" {
			rules, err = extract.LoadRules(cfg.Extract.RulesFile)
			if err != nil {
				return eris.Wrap(err, "run: load extraction rules")
			}
		}
		extractor := extract.NewEngine(rules, cfg.Extract.MinConfidence)

		for i, file := range files {
			res, err := extractor.ExtractFile(file)
			if err != nil {
				var noText *model.NoTextColumnError
				if errors.As(err, &noText) {
					zap.L().Debug("run: no text column, keeping rows as-is", zap.String("file", file.Name))
					continue
				}
				return eris.Wrapf(err, "run: extract %s", file.Name)
			}
			files[i].Rows = res.Rows
			files[i].Columns = withProductColumn(file.Columns)
			zap.L().Info("extraction complete",
				zap.String("file", file.Name),
				zap.Int("extracted", res.ExtractedCount),
				zap.Int("duplicates", res.DuplicatesRemoved),
				zap.Int("status_filtered", res.StatusFiltered),
				zap.Int("final", res.FinalCount),
			)
		}

		// Detect companies; explicit overrides win.
		assignments := make(map[string]string, len(files))
		for _, file := range files {
			if company, ok := overrides[file.Name]; ok {
				assignments[file.Name] = company
				zap.L().Info("company overridden", zap.String("file", file.Name), zap.String("company", company))
				continue
			}
			a := resolve.DetectCompany(file, cfg.Companies)
			assignments[file.Name] = a.Company
			zap.L().Info("company detected",
				zap.String("file", file.Name),
				zap.String("company", a.Company),
				zap.Int("confidence", a.Confidence),
				zap.String("evidence", string(a.EvidenceSource)),
			)
		}

		// Process against the live tab list.
		client, err := initSheetsClient(ctx)
		if err != nil {
			return err
		}
		tabs, err := client.ListTabs(ctx)
		if err != nil {
			return eris.Wrap(err, "run: list tabs")
		}
		titles := make([]string, 0, len(tabs))
		for _, tab := range tabs {
			titles = append(titles, tab.Title)
		}

		out := process.New(cfg.Companies).Run(files, assignments, titles)
		for file, msg := range out.FileErrors {
			zap.L().Warn("run: file not processed", zap.String("file", file), zap.String("reason", msg))
		}
		if len(out.Companies) == 0 {
			return eris.New("run: no company produced syncable rows")
		}

		summary := newRunSummary(mode, uploads, out)

		if runDryRun {
			zap.L().Info("dry run, skipping sync")
			return printJSON(summary)
		}

		// Sync.
		results, err := syncer.NewEngine(client).Run(ctx, syncer.FromProcessing(out.Companies), mode)
		if err != nil {
			return eris.Wrap(err, "run: sync")
		}
		summary.Results = results

		return printJSON(summary)
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&runFiles, "files", nil, "export files or globs (required)")
	runCmd.Flags().StringVar(&runMode, "mode", "replace", "write mode: replace or append")
	runCmd.Flags().StringSliceVar(&runOverrides, "company-override", nil, "force a file's company, as file=Company (repeatable)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "process only, print the plan without writing")
	_ = runCmd.MarkFlagRequired("files")
	rootCmd.AddCommand(runCmd)
}

// runSummary is the JSON report printed to stdout after a run.
type runSummary struct {
	Mode       string                      `json:"mode"`
	Files      []string                    `json:"files"`
	Companies  map[string]companySummary   `json:"companies"`
	FileErrors map[string]string           `json:"file_errors,omitempty"`
	Results    map[string]model.SyncResult `json:"results,omitempty"`
}

type companySummary struct {
	Rows            int    `json:"rows"`
	Filtered        int    `json:"filtered"`
	ExistingTabName string `json:"existing_tab_name,omitempty"`
	ResolvedTabName string `json:"resolved_tab_name,omitempty"`
	DateSource      string `json:"date_source,omitempty"`
}

func newRunSummary(mode model.WriteMode, uploads []ingest.NamedData, out *process.Output) runSummary {
	s := runSummary{
		Mode:      string(mode),
		Files:     make([]string, 0, len(uploads)),
		Companies: make(map[string]companySummary, len(out.Companies)),
	}
	for _, u := range uploads {
		s.Files = append(s.Files, u.Name)
	}
	if len(out.FileErrors) > 0 {
		s.FileErrors = out.FileErrors
	}
	for name, pr := range out.Companies {
		if pr == nil {
			continue
		}
		s.Companies[name] = companySummary{
			Rows:            pr.RowCount,
			Filtered:        pr.FilteredCount,
			ExistingTabName: pr.ExistingTabName,
			ResolvedTabName: pr.ResolvedTabName,
			DateSource:      string(pr.DateSource),
		}
	}
	return s
}

// parseOverrides parses repeated file=Company pairs.
func parseOverrides(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		file, company, ok := strings.Cut(pair, "=")
		file = strings.TrimSpace(file)
		company = strings.TrimSpace(company)
		if !ok || file == "" || company == "" {
			return nil, eris.Errorf("run: malformed --company-override %q (want file=Company)", pair)
		}
		out[file] = company
	}
	return out, nil
}

// collectFiles expands glob patterns and reads every match into memory.
// Duplicate matches across patterns are read once.
func collectFiles(patterns []string) ([]ingest.NamedData, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, eris.Wrapf(err, "run: bad file pattern %q", pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	if len(paths) == 0 {
		return nil, eris.Errorf("run: no files match %v", patterns)
	}
	sort.Strings(paths)

	out := make([]ingest.NamedData, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "run: read %s", path)
		}
		out = append(out, ingest.NamedData{Name: filepath.Base(path), Data: data})
	}
	return out, nil
}

// withProductColumn exposes the column extraction writes to, so the
// header-driven cleaning stage can map it.
func withProductColumn(columns []string) []string {
	for _, c := range columns {
		if c == model.ColumnProduct {
			return columns
		}
	}
	out := make([]string, 0, len(columns)+1)
	out = append(out, columns...)
	return append(out, model.ColumnProduct)
}

func containsCompany(companies []string, name string) bool {
	for _, c := range companies {
		if c == name {
			return true
		}
	}
	return false
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
