package testcase

import (
	"encoding/json"
	"fmt"
	"strings"
)

// requiredFields are the keys the UI must send for every test case.
var requiredFields = []string{
	"id", "testCaseId", "requirementId", "description",
	"preconditions", "steps", "postconditions", "testabilityType",
}

type strictCase struct {
	ID              string     `json:"id"`
	TestCaseID      string     `json:"testCaseId"`
	RequirementID   string     `json:"requirementId"`
	Description     string     `json:"description"`
	Preconditions   string     `json:"preconditions"`
	Steps           []string   `json:"steps"`
	ExpectedResult  flexString `json:"expectedResult"`
	Postconditions  string     `json:"postconditions"`
	TestabilityType string     `json:"testabilityType"`
}

// DecodeList parses a client-supplied test case array. Every field except
// expectedResult must be present.
func DecodeList(data []byte) ([]TestCase, error) {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode test cases: %w", err)
	}
	if items == nil {
		return nil, fmt.Errorf("decode test cases: expected a JSON array")
	}
	var parsed []strictCase
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode test cases: %w", err)
	}
	cases := make([]TestCase, 0, len(parsed))
	for i, sc := range parsed {
		for _, k := range requiredFields {
			if _, ok := items[i][k]; !ok {
				return nil, fmt.Errorf("test case %d: missing field %q", i, k)
			}
		}
		cases = append(cases, TestCase{
			ID:              sc.ID,
			TestCaseID:      sc.TestCaseID,
			RequirementID:   sc.RequirementID,
			Description:     sc.Description,
			Preconditions:   sc.Preconditions,
			Steps:           sc.Steps,
			ExpectedResult:  string(sc.ExpectedResult),
			Postconditions:  sc.Postconditions,
			TestabilityType: sc.TestabilityType,
		})
	}
	return cases, nil
}

// DecodeGenerated parses the model's JSON output, tolerating the key and
// shape drift it produces: alternate field names, string-or-list expected
// results and missing identifiers.
func DecodeGenerated(data []byte, testabilityType string) ([]TestCase, error) {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode generated test cases: %w", err)
	}
	if items == nil {
		return nil, fmt.Errorf("decode generated test cases: expected a JSON array")
	}
	cases := make([]TestCase, 0, len(items))
	for i, m := range items {
		tc := TestCase{
			ID:              fmt.Sprintf("tc-%d", i+1),
			TestCaseID:      fmt.Sprintf("TC_%03d", i+1),
			Steps:           []string{},
			ExpectedResult:  expectedAt(m),
			TestabilityType: testabilityType,
		}
		if s, ok := stringAt(m, "testCaseId"); ok {
			tc.TestCaseID = s
		}
		// The model drifts between requirementId and its misspelled
		// variant; an empty preferred value falls through too.
		tc.RequirementID, _ = stringAt(m, "requirementId")
		if tc.RequirementID == "" {
			tc.RequirementID, _ = stringAt(m, "RequirmentId")
		}
		tc.Description, _ = stringAt(m, "description")
		tc.Preconditions, _ = stringAt(m, "preconditions")
		tc.Postconditions, _ = stringAt(m, "postconditions")
		if raw, ok := m["Input steps"]; ok {
			tc.Steps = asList(raw)
		}
		if len(tc.Steps) == 0 {
			if raw, ok := m["steps"]; ok {
				tc.Steps = asList(raw)
			}
		}
		cases = append(cases, tc)
	}
	return cases, nil
}

// DecodeModified parses a model modification response. Case i keeps the
// identity of originals[i], or originals[0] when the model returns more
// cases than it was given, and missing fields fall back to that original.
// The expected result is always taken from the model output.
func DecodeModified(data []byte, originals []TestCase) ([]TestCase, error) {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode modified test cases: %w", err)
	}
	if items == nil {
		return nil, fmt.Errorf("decode modified test cases: expected a JSON array")
	}
	if len(originals) == 0 {
		return nil, fmt.Errorf("decode modified test cases: no originals to modify")
	}
	cases := make([]TestCase, 0, len(items))
	for i, m := range items {
		orig := originals[0]
		if i < len(originals) {
			orig = originals[i]
		}
		tc := TestCase{
			ID:              orig.ID,
			TestCaseID:      orig.TestCaseID,
			RequirementID:   orig.RequirementID,
			Description:     orig.Description,
			Preconditions:   orig.Preconditions,
			Steps:           orig.Steps,
			ExpectedResult:  expectedValue(m),
			Postconditions:  orig.Postconditions,
			TestabilityType: orig.TestabilityType,
		}
		if s, ok := stringAt(m, "testCaseId"); ok {
			tc.TestCaseID = s
		}
		if s, ok := stringAt(m, "requirementId"); ok {
			tc.RequirementID = s
		}
		if s, ok := stringAt(m, "description"); ok {
			tc.Description = s
		}
		if s, ok := stringAt(m, "preconditions"); ok {
			tc.Preconditions = s
		}
		if s, ok := stringAt(m, "postconditions"); ok {
			tc.Postconditions = s
		}
		if raw, ok := m["steps"]; ok {
			tc.Steps = asList(raw)
		}
		cases = append(cases, tc)
	}
	return cases, nil
}

// SplitCase is one test case produced by a split, before the caller
// assigns its position-derived identifiers.
type SplitCase struct {
	TestCase
	HasTestCaseID bool
}

// DecodeSplit parses a model split response. Position-derived identifiers
// are left to the caller; a missing requirement id falls back to the
// group's.
func DecodeSplit(data []byte, requirementID, testabilityType string) ([]SplitCase, error) {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode split test cases: %w", err)
	}
	if items == nil {
		return nil, fmt.Errorf("decode split test cases: expected a JSON array")
	}
	cases := make([]SplitCase, 0, len(items))
	for _, m := range items {
		sc := SplitCase{TestCase: TestCase{
			RequirementID:   requirementID,
			Steps:           []string{},
			ExpectedResult:  expectedValue(m),
			TestabilityType: testabilityType,
		}}
		if s, ok := stringAt(m, "testCaseId"); ok {
			sc.TestCaseID = s
			sc.HasTestCaseID = true
		}
		if s, ok := stringAt(m, "requirementId"); ok {
			sc.RequirementID = s
		}
		sc.Description, _ = stringAt(m, "description")
		sc.Preconditions, _ = stringAt(m, "preconditions")
		sc.Postconditions, _ = stringAt(m, "postconditions")
		if raw, ok := m["steps"]; ok {
			sc.Steps = asList(raw)
		}
		cases = append(cases, sc)
	}
	return cases, nil
}

// flexString accepts either a JSON string or a list of strings. Lists join
// with newlines.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = flexString(strings.Join(list, "\n"))
		return nil
	}
	*f = flexString(asString(data))
	return nil
}

func firstRaw(m map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if raw, ok := m[k]; ok {
			return raw, true
		}
	}
	return nil, false
}

// stringAt returns the first present key's value as a string. The boolean
// reports presence, so an explicit empty value is not confused with a
// missing key.
func stringAt(m map[string]json.RawMessage, keys ...string) (string, bool) {
	raw, ok := firstRaw(m, keys...)
	if !ok {
		return "", false
	}
	return asString(raw), true
}

func asString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}

func asList(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, asString(it))
		}
		return out
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []string{s}
	}
	return []string{}
}

func isList(raw json.RawMessage) bool {
	text := strings.TrimSpace(string(raw))
	return strings.HasPrefix(text, "[")
}

func expectedAt(m map[string]json.RawMessage) string {
	if raw, ok := m["expectedResult Steps"]; ok && isList(raw) {
		return strings.Join(asList(raw), "\n")
	}
	return expectedValue(m)
}

func expectedValue(m map[string]json.RawMessage) string {
	if raw, ok := m["expectedResult"]; ok {
		if isList(raw) {
			return strings.Join(asList(raw), "\n")
		}
		return asString(raw)
	}
	return ""
}
