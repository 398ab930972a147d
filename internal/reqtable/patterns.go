package reqtable

import "regexp"

// Patterns configures the scanner. Substituting different markers or ID
// formats requires no control-flow changes.
type Patterns struct {
	// Marker opens the table region; matched anywhere in a line.
	Marker *regexp.Regexp
	// Boundary signals an unrelated section heading and ends the region.
	Boundary *regexp.Regexp
	// RowStart is the loose test for a line that begins a new row.
	RowStart *regexp.Regexp
	// Row is the strict capture: base identifier, version digits, title,
	// with an optional trailing "(word) number" annotation that is
	// discarded.
	Row *regexp.Regexp
}

// DefaultPatterns matches the Active Requirements table layout.
func DefaultPatterns() Patterns {
	return Patterns{
		Marker:   regexp.MustCompile(`(?i)\bActive\s+Requirements\b`),
		Boundary: regexp.MustCompile(`^\d{1,2}\.\d+\s+|^[A-Z][a-zA-Z\s]+:`),
		RowStart: regexp.MustCompile(`^REQ-[\w-]+\s+v\d+`),
		Row:      regexp.MustCompile(`^(REQ-[\w-]+)\s+v(\d+)\s+(.+?)(?:\s+\(\w+\)\s*\d+)?$`),
	}
}
