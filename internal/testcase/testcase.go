// Package testcase defines the test case and requirement models shared by
// the generation endpoints, plus their JSON and CSV encodings.
package testcase

// Requirement is one extracted requirement sent to the model.
type Requirement struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// TestCase is the unit the API generates, modifies and exports.
type TestCase struct {
	ID              string   `json:"id"`
	TestCaseID      string   `json:"testCaseId"`
	RequirementID   string   `json:"requirementId"`
	Description     string   `json:"description"`
	Preconditions   string   `json:"preconditions"`
	Steps           []string `json:"steps"`
	ExpectedResult  string   `json:"expectedResult"`
	Postconditions  string   `json:"postconditions"`
	TestabilityType string   `json:"testabilityType"`
}

// Group holds the test cases of one requirement.
type Group struct {
	RequirementID string
	Cases         []TestCase
}

// GroupByRequirement partitions cases by requirement, preserving the order
// in which each requirement first appears.
func GroupByRequirement(cases []TestCase) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, tc := range cases {
		i, ok := index[tc.RequirementID]
		if !ok {
			i = len(groups)
			index[tc.RequirementID] = i
			groups = append(groups, Group{RequirementID: tc.RequirementID})
		}
		groups[i].Cases = append(groups[i].Cases, tc)
	}
	return groups
}
