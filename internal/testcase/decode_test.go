package testcase

import (
	"reflect"
	"strings"
	"testing"
)

func TestDecodeGenerated_Defaults(t *testing.T) {
	cases, err := DecodeGenerated([]byte(`[{}]`), "blackbox")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(cases) != 1 {
		t.Fatalf("expected 1 case, got %d", len(cases))
	}
	tc := cases[0]
	if tc.ID != "tc-1" {
		t.Errorf("expected id tc-1, got %q", tc.ID)
	}
	if tc.TestCaseID != "TC_001" {
		t.Errorf("expected testCaseId TC_001, got %q", tc.TestCaseID)
	}
	if tc.RequirementID != "" || tc.Description != "" || tc.ExpectedResult != "" {
		t.Errorf("expected empty defaults, got %+v", tc)
	}
	if tc.Steps == nil || len(tc.Steps) != 0 {
		t.Errorf("expected empty non-nil steps, got %#v", tc.Steps)
	}
	if tc.TestabilityType != "blackbox" {
		t.Errorf("expected testabilityType blackbox, got %q", tc.TestabilityType)
	}
}

func TestDecodeGenerated_SequentialIdentifiers(t *testing.T) {
	cases, err := DecodeGenerated([]byte(`[{}, {}, {}]`), "whitebox")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	wantIDs := []string{"tc-1", "tc-2", "tc-3"}
	wantTC := []string{"TC_001", "TC_002", "TC_003"}
	for i, tc := range cases {
		if tc.ID != wantIDs[i] {
			t.Errorf("case %d: expected id %q, got %q", i, wantIDs[i], tc.ID)
		}
		if tc.TestCaseID != wantTC[i] {
			t.Errorf("case %d: expected testCaseId %q, got %q", i, wantTC[i], tc.TestCaseID)
		}
	}
}

func TestDecodeGenerated_AliasKeys(t *testing.T) {
	raw := `[{
		"testCaseId": "TC_900",
		"RequirmentId": "REQ_001",
		"Input steps": ["send request", "read response"],
		"expectedResult Steps": ["positive response", "data matches"]
	}]`
	cases, err := DecodeGenerated([]byte(raw), "blackbox")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	tc := cases[0]
	if tc.TestCaseID != "TC_900" {
		t.Errorf("expected TC_900, got %q", tc.TestCaseID)
	}
	if tc.RequirementID != "REQ_001" {
		t.Errorf("expected REQ_001, got %q", tc.RequirementID)
	}
	if want := []string{"send request", "read response"}; !reflect.DeepEqual(tc.Steps, want) {
		t.Errorf("expected steps %v, got %v", want, tc.Steps)
	}
	if want := "positive response\ndata matches"; tc.ExpectedResult != want {
		t.Errorf("expected %q, got %q", want, tc.ExpectedResult)
	}
}

func TestDecodeGenerated_PreferredKeysWin(t *testing.T) {
	raw := `[{
		"requirementId": "REQ_A",
		"RequirmentId": "REQ_B",
		"Input steps": ["preferred"],
		"steps": ["ignored"]
	}]`
	cases, err := DecodeGenerated([]byte(raw), "blackbox")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cases[0].RequirementID != "REQ_A" {
		t.Errorf("expected REQ_A, got %q", cases[0].RequirementID)
	}
	if want := []string{"preferred"}; !reflect.DeepEqual(cases[0].Steps, want) {
		t.Errorf("expected steps %v, got %v", want, cases[0].Steps)
	}
}

func TestDecodeGenerated_EmptyPreferredKeyFallsThrough(t *testing.T) {
	raw := `[{
		"requirementId": "",
		"RequirmentId": "REQ_B",
		"Input steps": [],
		"steps": ["fallback step"]
	}]`
	cases, err := DecodeGenerated([]byte(raw), "blackbox")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cases[0].RequirementID != "REQ_B" {
		t.Errorf("expected REQ_B, got %q", cases[0].RequirementID)
	}
	if want := []string{"fallback step"}; !reflect.DeepEqual(cases[0].Steps, want) {
		t.Errorf("expected steps %v, got %v", want, cases[0].Steps)
	}
}

func TestDecodeGenerated_ExpectedResultShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"string", `[{"expectedResult": "door unlocks"}]`, "door unlocks"},
		{"list", `[{"expectedResult": ["step one", "step two"]}]`, "step one\nstep two"},
		{"steps key not a list falls back", `[{"expectedResult Steps": "oops", "expectedResult": "real"}]`, "real"},
		{"absent", `[{}]`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cases, err := DecodeGenerated([]byte(tt.raw), "blackbox")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if cases[0].ExpectedResult != tt.want {
				t.Errorf("expected %q, got %q", tt.want, cases[0].ExpectedResult)
			}
		})
	}
}

func TestDecodeGenerated_PresentEmptyTestCaseIDKept(t *testing.T) {
	cases, err := DecodeGenerated([]byte(`[{"testCaseId": ""}]`), "blackbox")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cases[0].TestCaseID != "" {
		t.Errorf("expected empty testCaseId preserved, got %q", cases[0].TestCaseID)
	}
}

func TestDecodeGenerated_StringStepsBecomeOneStep(t *testing.T) {
	cases, err := DecodeGenerated([]byte(`[{"steps": "single action"}]`), "blackbox")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if want := []string{"single action"}; !reflect.DeepEqual(cases[0].Steps, want) {
		t.Errorf("expected steps %v, got %v", want, cases[0].Steps)
	}
}

func TestDecodeGenerated_RejectsNonArray(t *testing.T) {
	for _, raw := range []string{`{"a": 1}`, `null`, `"text"`} {
		if _, err := DecodeGenerated([]byte(raw), "blackbox"); err == nil {
			t.Errorf("expected error for %s", raw)
		}
	}
}

const validCaseJSON = `[{
	"id": "tc-1",
	"testCaseId": "TC_001",
	"requirementId": "REQ_001",
	"description": "Read vehicle speed",
	"preconditions": "ECU powered",
	"steps": ["send 22 F1 90", "read response"],
	"expectedResult": "62 F1 90 with speed data",
	"postconditions": "session unchanged",
	"testabilityType": "blackbox"
}]`

func TestDecodeList_Valid(t *testing.T) {
	cases, err := DecodeList([]byte(validCaseJSON))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(cases) != 1 {
		t.Fatalf("expected 1 case, got %d", len(cases))
	}
	tc := cases[0]
	if tc.ID != "tc-1" || tc.TestCaseID != "TC_001" || tc.RequirementID != "REQ_001" {
		t.Errorf("unexpected identifiers in %+v", tc)
	}
	if len(tc.Steps) != 2 || tc.Steps[0] != "send 22 F1 90" {
		t.Errorf("unexpected steps %v", tc.Steps)
	}
}

func TestDecodeList_MissingFieldRejected(t *testing.T) {
	raw := `[{
		"id": "tc-1",
		"testCaseId": "TC_001",
		"requirementId": "REQ_001",
		"description": "desc",
		"preconditions": "pre",
		"steps": [],
		"testabilityType": "blackbox"
	}]`
	_, err := DecodeList([]byte(raw))
	if err == nil {
		t.Fatal("expected an error for a missing field")
	}
	if !strings.Contains(err.Error(), "postconditions") {
		t.Errorf("expected error to name the missing field, got %v", err)
	}
}

func TestDecodeList_ExpectedResultOptionalAndFlexible(t *testing.T) {
	raw := `[{
		"id": "tc-1",
		"testCaseId": "TC_001",
		"requirementId": "REQ_001",
		"description": "desc",
		"preconditions": "pre",
		"steps": [],
		"expectedResult": ["line one", "line two"],
		"postconditions": "post",
		"testabilityType": "blackbox"
	}]`
	cases, err := DecodeList([]byte(raw))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if want := "line one\nline two"; cases[0].ExpectedResult != want {
		t.Errorf("expected %q, got %q", want, cases[0].ExpectedResult)
	}
}

func TestDecodeList_RejectsNonArray(t *testing.T) {
	for _, raw := range []string{`{}`, `null`} {
		if _, err := DecodeList([]byte(raw)); err == nil {
			t.Errorf("expected error for %s", raw)
		}
	}
}

func modifyOriginals() []TestCase {
	return []TestCase{
		{
			ID: "tc-1", TestCaseID: "TC_001", RequirementID: "REQ_001",
			Description: "original one", Preconditions: "pre one",
			Steps: []string{"step one"}, ExpectedResult: "result one",
			Postconditions: "post one", TestabilityType: "blackbox",
		},
		{
			ID: "tc-2", TestCaseID: "TC_002", RequirementID: "REQ_001",
			Description: "original two", Preconditions: "pre two",
			Steps: []string{"step two"}, ExpectedResult: "result two",
			Postconditions: "post two", TestabilityType: "blackbox",
		},
	}
}

func TestDecodeModified_FieldFallbacks(t *testing.T) {
	raw := `[
		{"description": "updated one", "expectedResult": "new result"},
		{"steps": ["new step"], "postconditions": "new post"}
	]`
	cases, err := DecodeModified([]byte(raw), modifyOriginals())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}
	first := cases[0]
	if first.ID != "tc-1" || first.TestCaseID != "TC_001" {
		t.Errorf("expected preserved identity, got %+v", first)
	}
	if first.Description != "updated one" {
		t.Errorf("expected updated description, got %q", first.Description)
	}
	if first.Preconditions != "pre one" {
		t.Errorf("expected original preconditions, got %q", first.Preconditions)
	}
	if first.ExpectedResult != "new result" {
		t.Errorf("expected new result, got %q", first.ExpectedResult)
	}
	second := cases[1]
	if second.ID != "tc-2" || second.Description != "original two" {
		t.Errorf("unexpected second case %+v", second)
	}
	if want := []string{"new step"}; !reflect.DeepEqual(second.Steps, want) {
		t.Errorf("expected steps %v, got %v", want, second.Steps)
	}
}

func TestDecodeModified_ExpectedResultNeverFallsBack(t *testing.T) {
	cases, err := DecodeModified([]byte(`[{}]`), modifyOriginals())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cases[0].ExpectedResult != "" {
		t.Errorf("expected empty expectedResult, got %q", cases[0].ExpectedResult)
	}
	if cases[0].Description != "original one" {
		t.Errorf("expected other fields to fall back, got %q", cases[0].Description)
	}
}

func TestDecodeModified_ExtraCasesReuseFirstOriginal(t *testing.T) {
	raw := `[{}, {}, {"description": "third"}]`
	cases, err := DecodeModified([]byte(raw), modifyOriginals())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(cases) != 3 {
		t.Fatalf("expected 3 cases, got %d", len(cases))
	}
	if cases[2].ID != "tc-1" {
		t.Errorf("expected extra case to reuse first original's id, got %q", cases[2].ID)
	}
	if cases[2].Description != "third" {
		t.Errorf("expected model description, got %q", cases[2].Description)
	}
}

func TestDecodeSplit_Defaults(t *testing.T) {
	raw := `[
		{"testCaseId": "TC_001_A", "description": "scenario A"},
		{"description": "scenario B", "requirementId": "REQ_override"}
	]`
	cases, err := DecodeSplit([]byte(raw), "REQ_001", "graybox")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}
	if !cases[0].HasTestCaseID || cases[0].TestCaseID != "TC_001_A" {
		t.Errorf("expected supplied testCaseId, got %+v", cases[0])
	}
	if cases[0].RequirementID != "REQ_001" {
		t.Errorf("expected group requirement id, got %q", cases[0].RequirementID)
	}
	if cases[0].TestabilityType != "graybox" {
		t.Errorf("expected graybox, got %q", cases[0].TestabilityType)
	}
	if cases[1].HasTestCaseID {
		t.Error("expected missing testCaseId to be reported")
	}
	if cases[1].RequirementID != "REQ_override" {
		t.Errorf("expected supplied requirement id, got %q", cases[1].RequirementID)
	}
}

func TestGroupByRequirement_FirstSeenOrder(t *testing.T) {
	cases := []TestCase{
		{ID: "tc-1", RequirementID: "REQ_B"},
		{ID: "tc-2", RequirementID: "REQ_A"},
		{ID: "tc-3", RequirementID: "REQ_B"},
		{ID: "tc-4", RequirementID: "REQ_A"},
	}
	groups := GroupByRequirement(cases)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].RequirementID != "REQ_B" || groups[1].RequirementID != "REQ_A" {
		t.Errorf("expected first-seen order REQ_B, REQ_A, got %s, %s",
			groups[0].RequirementID, groups[1].RequirementID)
	}
	if len(groups[0].Cases) != 2 || groups[0].Cases[0].ID != "tc-1" || groups[0].Cases[1].ID != "tc-3" {
		t.Errorf("unexpected REQ_B group %+v", groups[0].Cases)
	}
}
