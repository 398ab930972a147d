package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/dgallion1/testgen/internal/refdoc"
	"github.com/dgallion1/testgen/internal/testcase"
)

type modifyResponse struct {
	ModifiedTestCases []testcase.TestCase `json:"modifiedTestCases"`
	Success           bool                `json:"success"`
	Error             string              `json:"error,omitempty"`
}

// handleModifyTestCases rewrites or splits the submitted test cases per
// the user's instruction. Attachments are buffered here, once, so every
// requirement group's model call sees the same bytes.
func (s *Server) handleModifyTestCases(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	casesField := r.FormValue("testCases")
	if casesField == "" {
		jsonError(w, "testCases is required", http.StatusBadRequest)
		return
	}
	instruction := r.FormValue("modificationInstruction")
	if instruction == "" {
		jsonError(w, "modificationInstruction is required", http.StatusBadRequest)
		return
	}
	split := strings.EqualFold(r.FormValue("isSplitRequest"), "true")

	cases, err := testcase.DecodeList([]byte(casesField))
	if err != nil {
		writeJSON(w, modifyResponse{ModifiedTestCases: []testcase.TestCase{}, Error: err.Error()})
		return
	}

	var atts []refdoc.Attachment
	for _, fh := range r.MultipartForm.File["attachments"] {
		f, err := fh.Open()
		if err != nil {
			s.log.Warn("failed to open attachment", "filename", sanitizeFilename(fh.Filename), "error", err)
			continue
		}
		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxAttachmentBytes+1))
		f.Close()
		if err != nil {
			s.log.Warn("failed to read attachment", "filename", sanitizeFilename(fh.Filename), "error", err)
			continue
		}
		atts = append(atts, refdoc.Attachment{
			Filename:    sanitizeFilename(fh.Filename),
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	out, err := s.svc.Modify(r.Context(), cases, instruction, split, atts)
	if err != nil {
		s.log.Error("test case modification failed", "error", err)
		writeJSON(w, modifyResponse{ModifiedTestCases: []testcase.TestCase{}, Error: err.Error()})
		return
	}

	writeJSON(w, modifyResponse{ModifiedTestCases: out, Success: true})
}
