package reqtable

import "strings"

// State names the scanner's position in the document.
type State int

const (
	// Seeking: before the region marker (or after a boundary ended it).
	Seeking State = iota
	// Capturing: inside the table region, no row in progress.
	Capturing
	// RowOpen: inside the region with a pending row accepting
	// continuation lines.
	RowOpen
)

func (s State) String() string {
	switch s {
	case Seeking:
		return "seeking"
	case Capturing:
		return "capturing"
	case RowOpen:
		return "row_open"
	}
	return "unknown"
}

// Scanner is the line-oriented state machine that reconstructs the
// requirements table from per-page text. One instance scans one document;
// it holds no state across documents and is not safe for concurrent use,
// but independent instances are.
type Scanner struct {
	pats    Patterns
	state   State
	pending *Row
	rows    []Row
	diags   []Diagnostic
	page    int
}

// NewScanner returns a scanner in the Seeking state.
func NewScanner(pats Patterns) *Scanner {
	return &Scanner{pats: pats}
}

// State reports the current state.
func (s *Scanner) State() State { return s.state }

// Line processes a single line and reports whether scanning of the current
// page should continue. A boundary match stops capturing and aborts the
// rest of the page.
func (s *Scanner) Line(text string) bool {
	line := strings.TrimSpace(text)
	if line == "" {
		return true
	}

	if s.state == Seeking {
		if s.pats.Marker.MatchString(line) {
			s.diag(DiagMarkerFound, line)
			s.state = Capturing
			if s.pending != nil {
				s.state = RowOpen
			}
		}
		return true
	}

	if s.pats.Boundary.MatchString(line) {
		// The pending row is kept; it commits at the next row start,
		// page flush, or the final flush.
		s.diag(DiagBoundary, line)
		s.state = Seeking
		return false
	}

	if s.pats.RowStart.MatchString(line) {
		m := s.pats.Row.FindStringSubmatch(line)
		if m == nil {
			// Irregular row start: fold the whole line into the open
			// row rather than dropping it. Without an open row there is
			// nothing to attach it to.
			s.diag(DiagRowMismatch, line)
			s.appendContinuation(line)
			return true
		}
		s.commit()
		s.pending = &Row{
			UniqueID: strings.TrimSpace(m[1] + " v" + m[2]),
			Name:     strings.TrimSpace(m[3]),
		}
		s.state = RowOpen
		return true
	}

	s.appendContinuation(line)
	return true
}

// Page runs the scanner over one page of text. At the end of the page a
// pending row is flushed if still capturing, so a row is never held across
// a page boundary. A row whose continuation lines spill onto the next page
// is therefore split in two; that is the documented behavior. Pages with
// no text at all are recorded and skipped without flushing.
func (s *Scanner) Page(page int, text string) {
	s.page = page
	if text == "" {
		s.diag(DiagPageEmpty, "")
		return
	}
	for _, line := range strings.Split(text, "\n") {
		if !s.Line(line) {
			break
		}
	}
	if s.state == RowOpen {
		s.commit()
		s.state = Capturing
	}
}

// PageFailed records a page whose text extraction failed; the scan
// continues on subsequent pages.
func (s *Scanner) PageFailed(page int, detail string) {
	s.page = page
	s.diag(DiagPageError, detail)
}

// Finish commits any remaining pending row and returns the result. A nil
// table means no rows matched anywhere; that is a valid outcome, not an
// error.
func (s *Scanner) Finish() (*Table, []Diagnostic) {
	s.commit()
	if len(s.rows) == 0 {
		return nil, s.diags
	}
	return &Table{Rows: s.rows}, s.diags
}

func (s *Scanner) commit() {
	if s.pending == nil {
		return
	}
	s.rows = append(s.rows, *s.pending)
	s.pending = nil
}

func (s *Scanner) appendContinuation(line string) {
	if s.pending == nil {
		return
	}
	s.pending.Name = strings.TrimSpace(s.pending.Name + " " + line)
}

func (s *Scanner) diag(code DiagCode, detail string) {
	s.diags = append(s.diags, Diagnostic{Code: code, Page: s.page, Detail: detail})
}
