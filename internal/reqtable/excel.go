package reqtable

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet is a cleaned worksheet: the header row with each cell trimmed, and
// the data rows with fully empty rows dropped. Rows are ragged the way the
// reader returns them; trailing empty cells are absent.
type Sheet struct {
	Headers []string
	Rows    [][]string
}

// ExtractSheet cleans the first worksheet of a spreadsheet held in memory.
// A workbook without usable data yields an empty sheet, not an error.
func ExtractSheet(data []byte, log *slog.Logger) (*Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return firstSheet(f, log)
}

// ExtractSheetFile cleans the first worksheet of a spreadsheet on disk.
func ExtractSheetFile(path string, log *slog.Logger) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return firstSheet(f, log)
}

func firstSheet(f *excelize.File, log *slog.Logger) (*Sheet, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn("failed to close workbook", "error", err)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Sheet{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &Sheet{}, nil
	}

	sheet := &Sheet{Headers: make([]string, len(rows[0]))}
	for i, h := range rows[0] {
		sheet.Headers[i] = strings.TrimSpace(h)
	}
	for _, row := range rows[1:] {
		if rowEmpty(row) {
			continue
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	log.Debug("worksheet cleaned", "sheet", sheets[0], "rows", len(sheet.Rows))
	return sheet, nil
}

// rowEmpty reports whether every cell is the empty string. Cells holding
// only whitespace count as data, matching how spreadsheet readers
// distinguish blank cells from spacing.
func rowEmpty(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
