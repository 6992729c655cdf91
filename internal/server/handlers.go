package server

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/sells-group/sheetsync/internal/ingest"
	"github.com/sells-group/sheetsync/internal/model"
	"github.com/sells-group/sheetsync/internal/resolve"
	"github.com/sells-group/sheetsync/internal/syncer"
)

// multipartMemoryLimit bounds how much of an upload stays in memory before
// spilling to temp files.
const multipartMemoryLimit = 32 << 20

// fileInput is a file reference in a step request. Rows may be omitted when
// the session cache still holds them.
type fileInput struct {
	Name    string            `json:"name"`
	Columns []string          `json:"columns,omitempty"`
	Rows    []model.RowRecord `json:"rows,omitempty"`
}

type fileResult struct {
	Name     string            `json:"name"`
	Rows     []model.RowRecord `json:"rows,omitempty"`
	RowCount int               `json:"rowCount,omitempty"`
	Columns  []string          `json:"columns,omitempty"`
	Error    string            `json:"error,omitempty"`
}

type ingestResponse struct {
	SessionID string       `json:"sessionId,omitempty"`
	Files     []fileResult `json:"files"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		respondError(w, http.StatusBadRequest, `no files uploaded (multipart field "files")`)
		return
	}

	// Read every upload first; a file that fails to read occupies its slot
	// with an error entry and never blocks the rest of the batch.
	entries := make([]fileResult, len(headers))
	uploads := make([]ingest.NamedData, 0, len(headers))
	uploadIdx := make([]int, 0, len(headers))

	for i, fh := range headers {
		name := ingest.SanitizeFileName(fh.Filename)
		f, err := fh.Open()
		if err != nil {
			entries[i] = fileResult{Name: name, Error: "read upload: " + err.Error()}
			continue
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			entries[i] = fileResult{Name: name, Error: "read upload: " + err.Error()}
			continue
		}
		uploads = append(uploads, ingest.NamedData{Name: fh.Filename, Data: data})
		uploadIdx = append(uploadIdx, i)
	}

	results := ingest.ParseAll(r.Context(), uploads, ingest.Options{
		MaxFileSize:       int64(s.cfg.Upload.MaxFileSizeMB) << 20,
		AllowedExtensions: s.cfg.Upload.AllowedExtensions,
	})

	var parsed []model.FileRows
	for j, res := range results {
		i := uploadIdx[j]
		if res.Err != nil {
			entries[i] = fileResult{Name: res.File.Name, Error: res.Err.Error()}
			continue
		}
		parsed = append(parsed, res.File)
		entries[i] = fileResult{
			Name:     res.File.Name,
			Rows:     res.File.Rows,
			RowCount: res.File.RowCount(),
			Columns:  res.File.Columns,
		}
	}

	resp := ingestResponse{Files: entries}
	if len(parsed) > 0 {
		resp.SessionID = s.sessions.Put(parsed)
	}
	respondJSON(w, http.StatusOK, resp)
}

type extractRequest struct {
	SessionID string      `json:"sessionId"`
	Files     []fileInput `json:"files"`
}

type extractFileResult struct {
	Name                string            `json:"name"`
	Rows                []model.RowRecord `json:"rows,omitempty"`
	ExtractedCount      int               `json:"extractedCount"`
	DuplicatesRemoved   int               `json:"duplicatesRemoved"`
	FilteredStatusCount int               `json:"filteredStatusCount"`
	FinalCount          int               `json:"finalCount"`
	Error               string            `json:"error,omitempty"`
}

type extractResponse struct {
	Files []extractFileResult `json:"files"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	files := s.resolveFiles(req.SessionID, req.Files)
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "no files to extract")
		return
	}

	out := make([]extractFileResult, 0, len(files))
	for _, file := range files {
		res, err := s.extractor.ExtractFile(file)
		if err != nil {
			out = append(out, extractFileResult{Name: file.Name, Error: err.Error()})
			continue
		}
		out = append(out, extractFileResult{
			Name:                file.Name,
			Rows:                res.Rows,
			ExtractedCount:      res.ExtractedCount,
			DuplicatesRemoved:   res.DuplicatesRemoved,
			FilteredStatusCount: res.StatusFiltered,
			FinalCount:          res.FinalCount,
		})
	}
	respondJSON(w, http.StatusOK, extractResponse{Files: out})
}

type detectRequest struct {
	SessionID string      `json:"sessionId"`
	Files     []fileInput `json:"files"`
}

type detectFileResult struct {
	Name           string `json:"name"`
	Company        string `json:"company"`
	Confidence     int    `json:"confidence"`
	EvidenceSource string `json:"evidenceSource"`
}

type detectResponse struct {
	Files              []detectFileResult `json:"files"`
	AvailableCompanies []string           `json:"availableCompanies"`
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	files := s.resolveFiles(req.SessionID, req.Files)
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "no files to detect companies for")
		return
	}

	out := make([]detectFileResult, 0, len(files))
	for _, file := range files {
		a := resolve.DetectCompany(file, s.cfg.Companies)
		out = append(out, detectFileResult{
			Name:           file.Name,
			Company:        a.Company,
			Confidence:     a.Confidence,
			EvidenceSource: string(a.EvidenceSource),
		})
	}
	respondJSON(w, http.StatusOK, detectResponse{
		Files:              out,
		AvailableCompanies: s.cfg.Companies,
	})
}

type processRequest struct {
	SessionID   string            `json:"sessionId"`
	Files       []fileInput       `json:"files"`
	Assignments map[string]string `json:"assignments"`
}

type companyResult struct {
	Company         string            `json:"company"`
	Rows            []model.RowRecord `json:"rows,omitempty"`
	RowCount        int               `json:"rowCount"`
	FilteredCount   int               `json:"filteredCount"`
	ExistingTabName string            `json:"existingTabName,omitempty"`
	ResolvedTabName string            `json:"resolvedTabName,omitempty"`
	ResolvedDates   []string          `json:"resolvedDates,omitempty"`
	DateSource      string            `json:"dateSource,omitempty"`
}

type processResponse struct {
	Companies  map[string]companyResult `json:"companies"`
	FileErrors map[string]string        `json:"fileErrors,omitempty"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Assignments) == 0 {
		respondError(w, http.StatusBadRequest, "assignments are required")
		return
	}

	files := s.resolveFiles(req.SessionID, req.Files)
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "no files to process")
		return
	}

	tabs, err := s.client.ListTabs(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, "list spreadsheet tabs: "+err.Error())
		return
	}
	titles := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		titles = append(titles, tab.Title)
	}

	out := s.processor.Run(files, req.Assignments, titles)

	resp := processResponse{
		Companies:  make(map[string]companyResult, len(out.Companies)),
		FileErrors: out.FileErrors,
	}
	for name, pr := range out.Companies {
		if pr == nil {
			continue
		}
		resp.Companies[name] = companyResult{
			Company:         pr.Company,
			Rows:            pr.Rows,
			RowCount:        pr.RowCount,
			FilteredCount:   pr.FilteredCount,
			ExistingTabName: pr.ExistingTabName,
			ResolvedTabName: pr.ResolvedTabName,
			ResolvedDates:   formatDates(pr.ResolvedDates),
			DateSource:      string(pr.DateSource),
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

type configureRequest struct {
	SessionID string `json:"sessionId"`
	Mode      string `json:"mode"`
}

func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request) {
	var req configureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mode, err := model.ParseWriteMode(req.Mode)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SessionID == "" {
		respondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	if !s.sessions.SetMode(req.SessionID, mode) {
		respondError(w, http.StatusNotFound, "session not found or expired")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"mode":   string(mode),
	})
}

type syncCompanyInput struct {
	Rows            []model.RowRecord `json:"rows"`
	ExistingTabName string            `json:"existingTabName"`
	ResolvedTabName string            `json:"resolvedTabName"`
}

type syncRequest struct {
	SessionID string                      `json:"sessionId"`
	Mode      string                      `json:"mode"`
	Companies map[string]syncCompanyInput `json:"companies"`
}

type syncCompanyResult struct {
	Success      bool   `json:"success"`
	FinalTabName string `json:"finalTabName,omitempty"`
	RowsWritten  int    `json:"rowsWritten,omitempty"`
	RowsAppended int    `json:"rowsAppended,omitempty"`
	Error        string `json:"error,omitempty"`
}

type syncResponse struct {
	Mode    string                       `json:"mode"`
	Results map[string]syncCompanyResult `json:"results"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Companies) == 0 {
		respondError(w, http.StatusBadRequest, "no companies to sync")
		return
	}

	// The request's explicit mode wins over the one stored at configure time.
	mode := model.WriteModeReplace
	switch {
	case req.Mode != "":
		m, err := model.ParseWriteMode(req.Mode)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		mode = m
	case req.SessionID != "":
		if m, ok := s.sessions.Mode(req.SessionID); ok && m != "" {
			mode = m
		}
	}

	names := make([]string, 0, len(req.Companies))
	for name := range req.Companies {
		names = append(names, name)
	}
	sort.Strings(names)

	targets := make([]syncer.Target, 0, len(names))
	for _, name := range names {
		in := req.Companies[name]
		targets = append(targets, syncer.Target{
			Company:         name,
			Rows:            in.Rows,
			ExistingTabName: in.ExistingTabName,
			ResolvedTabName: in.ResolvedTabName,
		})
	}

	results, err := syncer.NewEngine(s.client).Run(r.Context(), targets, mode)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	resp := syncResponse{Mode: string(mode), Results: make(map[string]syncCompanyResult, len(results))}
	for name, res := range results {
		resp.Results[name] = syncCompanyResult{
			Success:      res.Success,
			FinalTabName: res.FinalTabName,
			RowsWritten:  res.RowsWritten,
			RowsAppended: res.RowsAppended,
			Error:        res.Error,
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// resolveFiles materializes the request's files, falling back to the session
// cache for any file listed without rows. An empty file list with a live
// session means "use everything the session holds".
func (s *Server) resolveFiles(sessionID string, inputs []fileInput) []model.FileRows {
	var cached []model.FileRows
	if sessionID != "" {
		cached, _ = s.sessions.Files(sessionID)
	}

	if len(inputs) == 0 {
		return cached
	}

	byName := make(map[string]model.FileRows, len(cached))
	for _, f := range cached {
		byName[f.Name] = f
	}

	out := make([]model.FileRows, 0, len(inputs))
	for _, in := range inputs {
		if len(in.Rows) == 0 {
			if hit, ok := byName[in.Name]; ok {
				out = append(out, hit)
				continue
			}
		}
		out = append(out, model.FileRows{
			Name:    in.Name,
			Columns: columnsFor(in),
			Rows:    in.Rows,
		})
	}
	return out
}

// columnsFor returns the declared column order, falling back to sorted row
// keys when the client omitted it.
func columnsFor(in fileInput) []string {
	if len(in.Columns) > 0 {
		return in.Columns
	}
	if len(in.Rows) == 0 {
		return nil
	}
	cols := make([]string, 0, len(in.Rows[0]))
	for col := range in.Rows[0] {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func formatDates(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format("02-01-2006"))
	}
	return out
}
