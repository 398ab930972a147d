package reqtable

import (
	"bytes"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PageSource yields per-page plain text from a document. Pages are
// 1-indexed. An error from PageText marks that page as failed; the scan
// skips it and continues.
type PageSource interface {
	PageCount() int
	PageText(page int) (string, error)
}

// Scan runs one scanner over every page of src, in order. It never fails:
// malformed or table-less input yields a nil table. The diagnostics record
// what the scan saw, in order.
func Scan(src PageSource, pats Patterns, log *slog.Logger) (*Table, []Diagnostic) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	sc := NewScanner(pats)
	pages := src.PageCount()
	log.Debug("scanning document", "pages", pages)

	for page := 1; page <= pages; page++ {
		text, err := src.PageText(page)
		if err != nil {
			sc.PageFailed(page, err.Error())
			continue
		}
		sc.Page(page, text)
	}

	table, diags := sc.Finish()
	for _, d := range diags {
		switch d.Code {
		case DiagMarkerFound:
			log.Info("requirements table found", "page", d.Page)
		case DiagBoundary:
			log.Info("requirements table ended", "page", d.Page)
		case DiagRowMismatch:
			log.Debug("row start did not fully match", "page", d.Page, "line", d.Detail)
		case DiagPageEmpty:
			log.Warn("page has no extractable text", "page", d.Page)
		case DiagPageError:
			log.Warn("page text extraction failed", "page", d.Page, "error", d.Detail)
		}
	}
	if table == nil {
		log.Warn("no requirements table found")
	} else {
		log.Info("requirements table extracted", "rows", len(table.Rows))
	}
	return table, diags
}

// Extract scans a PDF held in memory. The returned error is fatal only:
// the bytes are not a readable PDF. Table-less input is (nil, diags, nil).
func Extract(data []byte, pats Patterns, log *slog.Logger) (*Table, []Diagnostic, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	r, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		log.Error("unreadable pdf", "error", err)
		return nil, nil, fmt.Errorf("open pdf: %w", err)
	}
	table, diags := Scan(pdfPages{r}, pats, log)
	return table, diags, nil
}

// ExtractFile scans a PDF on disk. The file handle is closed on every exit
// path. If the Go library cannot read the file, pdftotext is tried before
// giving up.
func ExtractFile(path string, pats Patterns, log *slog.Logger) (*Table, []Diagnostic, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	f, r, err := pdflib.Open(path)
	if err != nil {
		if text, fberr := pdftotext(path); fberr == nil {
			table, diags := Scan(splitPages(text), pats, log)
			return table, diags, nil
		}
		log.Error("unreadable pdf", "path", path, "error", err)
		return nil, nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	table, diags := Scan(pdfPages{r}, pats, log)
	return table, diags, nil
}

// pdfPages adapts a ledongthuc reader to PageSource.
type pdfPages struct {
	r *pdflib.Reader
}

func (p pdfPages) PageCount() int { return p.r.NumPage() }

func (p pdfPages) PageText(page int) (string, error) {
	pg := p.r.Page(page)
	if pg.V.IsNull() {
		return "", nil
	}
	return pg.GetPlainText(nil)
}

// textPages serves pre-extracted page text, one entry per page.
type textPages []string

func (t textPages) PageCount() int { return len(t) }

func (t textPages) PageText(page int) (string, error) { return t[page-1], nil }

func pdftotext(path string) (string, error) {
	out, err := exec.Command("pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

// splitPages splits pdftotext output on form feeds.
func splitPages(text string) textPages {
	return textPages(strings.Split(text, "\f"))
}
