package testcase

import (
	"encoding/csv"
	"io"
	"strings"
)

var csvHeader = []string{
	"Test Case ID", "Requirement ID", "Description", "Preconditions",
	"Steps", "Expected Result", "Postconditions", "Testability Type",
}

// WriteCSV writes the selected test cases as a CSV export. Steps collapse
// into a single cell separated by "; ".
func WriteCSV(w io.Writer, cases []TestCase) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, tc := range cases {
		record := []string{
			tc.TestCaseID,
			tc.RequirementID,
			tc.Description,
			tc.Preconditions,
			strings.Join(tc.Steps, "; "),
			tc.ExpectedResult,
			tc.Postconditions,
			tc.TestabilityType,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
