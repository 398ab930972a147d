// Package reqtable extracts the requirements table from uploaded
// documents: a line-oriented state machine over per-page PDF text, and a
// cleaner for spreadsheet uploads.
package reqtable

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Columns are the fixed output column names, in order.
var Columns = [2]string{"Unique ID", "Name"}

// Row is one extracted requirement record.
type Row struct {
	// UniqueID combines the base requirement key and its version tag,
	// e.g. "REQ-1234 v2".
	UniqueID string
	// Name is the requirement title, with wrapped lines space-joined in
	// document order.
	Name string
}

// Table holds extracted rows in first-seen order. Repeated identifiers are
// kept as separate rows; no deduplication happens.
type Table struct {
	Rows []Row
}

// WriteCSV writes the table with its column header.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := cw.Write([]string{row.UniqueID, row.Name}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// DiagCode identifies a scan event.
type DiagCode string

const (
	// DiagMarkerFound is recorded when the table region marker is seen.
	DiagMarkerFound DiagCode = "marker_found"
	// DiagBoundary is recorded when a section boundary ends the region.
	DiagBoundary DiagCode = "boundary"
	// DiagRowMismatch is recorded when a row-start line fails the strict
	// capture pattern and degrades to continuation handling.
	DiagRowMismatch DiagCode = "row_mismatch"
	// DiagPageEmpty is recorded for a page that yielded no text.
	DiagPageEmpty DiagCode = "page_empty"
	// DiagPageError is recorded for a page whose text extraction failed.
	DiagPageError DiagCode = "page_error"
)

// Diagnostic is one noteworthy event observed during a scan. Callers and
// tests assert on these instead of parsing log output.
type Diagnostic struct {
	Code   DiagCode
	Page   int
	Detail string
}
