package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/testgen/internal/testcase"
)

// handleDownloadSelected streams the selected test cases as a CSV file.
// Decode failures are reported as a 200 JSON error envelope, which the
// UI expects even on the download path.
func (s *Server) handleDownloadSelected(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var body struct {
		TestCases json.RawMessage `json:"testCases"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(body.TestCases) == 0 {
		jsonError(w, "testCases is required", http.StatusBadRequest)
		return
	}

	cases, err := testcase.DecodeList(body.TestCases)
	if err != nil {
		writeJSON(w, map[string]any{"success": false, "error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=selected-test-cases.csv")
	if err := testcase.WriteCSV(w, cases); err != nil {
		// Headers are gone already; all we can do is log.
		s.log.Error("csv export failed", "error", err)
	}
}
