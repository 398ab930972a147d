package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dgallion1/testgen/internal/testcase"
	"github.com/dgallion1/testgen/internal/testgen"
)

type generateResponse struct {
	TestCases []testcase.TestCase `json:"testCases"`
	Success   bool                `json:"success"`
	Error     string              `json:"error,omitempty"`
}

// handleGenerateTestCases runs the model over a requirements list. An
// uploaded file rides along only when it is a PDF, matching the UI's
// contract.
func (s *Server) handleGenerateTestCases(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	reqsField := r.FormValue("requirements")
	if reqsField == "" {
		jsonError(w, "requirements is required", http.StatusBadRequest)
		return
	}
	testabilityType := r.FormValue("testability_type")
	if testabilityType == "" {
		jsonError(w, "testability_type is required", http.StatusBadRequest)
		return
	}

	var reqs []testcase.Requirement
	if err := json.Unmarshal([]byte(reqsField), &reqs); err != nil {
		writeJSON(w, generateResponse{
			TestCases: []testcase.TestCase{},
			Error:     "invalid requirements JSON: " + err.Error(),
		})
		return
	}

	var refPDF []byte
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		if header.Header.Get("Content-Type") == "application/pdf" {
			refPDF, err = io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
			if err != nil {
				jsonError(w, "failed to read file", http.StatusInternalServerError)
				return
			}
			if int64(len(refPDF)) > s.cfg.MaxUploadBytes {
				jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
				return
			}
		}
	}

	cases, err := s.svc.Generate(r.Context(), reqs, testabilityType, refPDF)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, testgen.ErrUnparsableReply) {
			msg = "Failed to parse test cases from AI response"
		}
		s.log.Error("test case generation failed", "error", err)
		writeJSON(w, generateResponse{TestCases: []testcase.TestCase{}, Error: msg})
		return
	}

	writeJSON(w, generateResponse{TestCases: cases, Success: true})
}
