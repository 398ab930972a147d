package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/testgen/internal/reqtable"
	"github.com/dgallion1/testgen/internal/testcase"
)

type extractResponse struct {
	Requirements []testcase.Requirement `json:"requirements"`
	Success      bool                   `json:"success"`
	Error        string                 `json:"error,omitempty"`
}

// handleExtract pulls a requirements table out of an uploaded PDF or
// spreadsheet. Domain failures (unsupported type, unreadable file) are
// HTTP 200 with success=false; only transport problems get 4xx/5xx.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	// Limit total request size, with slack for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	log := s.log.With("filename", filename)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	var reqs []testcase.Requirement
	switch ext {
	case "pdf":
		table, _, err := reqtable.Extract(data, reqtable.DefaultPatterns(), log)
		if err != nil {
			writeJSON(w, extractResponse{Requirements: []testcase.Requirement{}, Error: err.Error()})
			return
		}
		if table == nil {
			log.Warn("no requirements extracted from pdf")
		}
		reqs = requirementsFromTable(table)
	case "xlsx", "xls":
		sheet, err := reqtable.ExtractSheet(data, log)
		if err != nil {
			writeJSON(w, extractResponse{Requirements: []testcase.Requirement{}, Error: err.Error()})
			return
		}
		if len(sheet.Rows) == 0 {
			log.Warn("no requirements extracted from spreadsheet")
		}
		reqs = requirementsFromSheet(sheet)
	default:
		writeJSON(w, extractResponse{
			Requirements: []testcase.Requirement{},
			Error:        fmt.Sprintf("Unsupported file type: %s", ext),
		})
		return
	}

	writeJSON(w, extractResponse{Requirements: reqs, Success: true})
}

// requirementsFromTable maps extracted PDF rows into requirements. Blank
// identifiers fall back to a zero-padded positional id.
func requirementsFromTable(t *reqtable.Table) []testcase.Requirement {
	if t == nil {
		return []testcase.Requirement{}
	}
	reqs := make([]testcase.Requirement, 0, len(t.Rows))
	for i, row := range t.Rows {
		req := testcase.Requirement{
			ID:          row.UniqueID,
			Description: row.Name,
			Category:    "Active Requirement",
		}
		if req.ID == "" {
			req.ID = fmt.Sprintf("REQ_%03d", i)
		}
		if req.Description == "" {
			req.Description = "No description available"
		}
		reqs = append(reqs, req)
	}
	return reqs
}

// requirementsFromSheet maps cleaned spreadsheet rows into requirements:
// column 0 is the id, column 1 the description, column 2 the category.
func requirementsFromSheet(sh *reqtable.Sheet) []testcase.Requirement {
	reqs := make([]testcase.Requirement, 0, len(sh.Rows))
	for i, row := range sh.Rows {
		req := testcase.Requirement{
			ID:          fmt.Sprintf("REQ_%03d", i),
			Description: "No description available",
			Category:    "General",
		}
		if len(row) > 0 && strings.TrimSpace(row[0]) != "" {
			req.ID = row[0]
		}
		if len(row) > 1 && strings.TrimSpace(row[1]) != "" {
			req.Description = row[1]
		}
		if len(row) > 2 && strings.TrimSpace(row[2]) != "" {
			req.Category = row[2]
		}
		reqs = append(reqs, req)
	}
	return reqs
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
