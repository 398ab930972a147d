package testgen

import (
	"fmt"
	"strings"

	"github.com/dgallion1/testgen/internal/testcase"
)

// Profile selects the generation prompt and its sampling defaults.
type Profile string

const (
	// ProfileGeneric generates broad functional test cases.
	ProfileGeneric Profile = "generic"
	// ProfileAutomotive generates ECU validation test cases in the
	// register of an automotive test engineer.
	ProfileAutomotive Profile = "automotive"
)

func (p Profile) Valid() bool {
	return p == ProfileGeneric || p == ProfileAutomotive
}

// Params returns the profile's sampling defaults. The automotive profile
// runs cold so the UDS frame formats come out verbatim.
func (p Profile) Params() CallParams {
	if p == ProfileAutomotive {
		return CallParams{Temperature: 0.1, TopP: 0.1, MaxOutputTokens: 8192}
	}
	return CallParams{Temperature: 0.7, TopP: 0.9, MaxOutputTokens: 8192}
}

// ModifyParams are the sampling settings of modification and split calls,
// independent of the generation profile.
var ModifyParams = CallParams{Temperature: 0.7, TopP: 0.9, MaxOutputTokens: 8192}

const genericPromptTemplate = `
Generate comprehensive test cases for the following requirements using the **%s** testing approach.

Requirements:
%s

For each requirement, generate detailed test cases with:
- Unique test case ID
- Clear description
- Preconditions
- Step-by-step test input steps
- Step-by-step Expected output
- postconditions

Format the response as a JSON array of test cases with this structure:
{
  "testCaseId": "TC_001",
  "RequirmentId": "REQ_001",
  "description": "Test description",
  "preconditions": "System preconditions",
  "Input steps": ["Step 1", "Step 2"],
  "expectedResult Steps": ["Output 1", "Output 2"],
  "postconditions": "System postconditions"
}

Focus on %s testing characteristics:
- Blackbox: Focus on input-output behavior without internal structure knowledge
- Graybox: Combine black box testing with some internal structure knowledge
- Whitebox: Focus on internal code structure, paths, and logic
`

const automotivePromptTemplate = `You are a senior automotive test engineer working on ECU validation for production software. You are given a simplified OEM requirement document (or an expert-cleaned version), and your task is to generate technically accurate, hardware-implementable test cases suitable for integration and validation teams.

Write testcases in generic and reusable format that can be used across different ECU platforms. Each test case must be clear, concise, and executable by hardware teams using tools like Vector Canoe, CAPL, or diagnostic tools.

For each requirement in the input list, generate exactly one test case. Process each requirement independently.

Your output must be in JSON format with the following structure for each test case:
{
  "testCaseId": "TC_001",
  "requirementId": "REQ_001",
  "description": "[Copy requirement text exactly without changing or rephrasing]",
  "preconditions": "[ECU initialization and setup conditions]",
  "steps": ["Step 1: [Action with specific technical details]", "Step 2: [Action with specific technical details]", "Step 3: [Action with specific technical details]"],
  "expectedResult": "[Expected outcomes with specific technical responses and numbered steps]",
  "postconditions": "[System state after test execution]"
}

### Instructions for Generating Test Cases:
- Use **numbered steps** (Step 1, Step 2, Step 3...) in the **steps** and **expectedResult** fields to clearly define actions and outcomes.
- Every step must be **factual**, **observable**, and **hardware-executable** with **specific technical implementation details**.
- Focus on **practical implementation** rather than theoretical explanations.
- Use **realistic technical language** that mirrors how human automotive testers write.
- **Minimize theory and maximize practical, executable actions**.

### Critical Requirements for Technical Specificity:

**For UDS/Diagnostic Services:**
- Always specify exact request formats and expected response formats
- Use placeholder format when exact values are not provided in requirements

**Example Input/Output Format for DIDs:**
- Test Input: ` + "`22 [DID][DID]`" + `
- Expected Result: ` + "`62 [DID][DID] [Data]`" + `

**Example Input/Output Format for Security Access:**
- Test Input: ` + "`27 [SEC_LVL]`" + `
- Expected Result: ` + "`67 [SEC_LVL] [SEED_BYTES...]`" + `

**Example Input/Output Format for IO Control:**
- Test Input: ` + "`2F [IOI_HIGH] [IOI_LOW] [SUB_FUNCTION] [CONTROL_VALUE]`" + `
- Expected Result: ` + "`6F [IOI_HIGH] [IOI_LOW] [SUB_FUNCTION] [CONTROL_VALUE]`" + `

### Placeholder Handling and Technical Format:

When requirements mention UDS services, DIDs, RIDs, or IO values but do not specify exact values, use this technical format:

**For Read Data By Identifier:**
` + "```" + `
Step 1: Send 22 [DID][DID] request to ECU
Expected Result: ECU returns 62 [DID][DID] [Data] positive response
Where: [DID][DID] - Data Identifier from ODX/CDD, [Data] - Current I/O status
` + "```" + `

**For Security Access:**
` + "```" + `
Step 1: Send 27 [SEC_LVL] request to ECU
Expected Result: ECU returns 67 [SEC_LVL] [SEED_BYTES...]
Where: [SEC_LVL] - Security level, [SEED_BYTES...] - Random seed for key calculation
` + "```" + `

**For IO Control:**
` + "```" + `
Step 1: Send 2F [IOI_HIGH] [IOI_LOW] [SUB_FUNCTION] [CONTROL_VALUE] request
Expected Result: ECU returns 6F [IOI_HIGH] [IOI_LOW] [SUB_FUNCTION] [CONTROL_VALUE] positive response
Where: [IOI_HIGH][IOI_LOW] - IO Control Parameter, [SUB_FUNCTION] - Control type, [CONTROL_VALUE] - Target value
` + "```" + `

### Practical Implementation Focus:

- **NO lengthy theoretical explanations** about protocols or standards
- **Focus on executable actions** that can be directly implemented in test tools
- **Specify exact frame formats** for CAN/UDS communications where applicable
- **Include practical timing constraints** only when specified in requirements
- **Use concrete technical language** that hardware teams can directly execute

### Error Handling Format:

When security conditions are not met:
- Expected Result: ` + "`7F [SERVICE_ID] [NRC_CODE]`" + `
- Example: ` + "`7F 2F 33`" + ` (NRC_SECURITY_ACCESS_DENIED)

When invalid parameters are used:
- Expected Result: ` + "`7F [SERVICE_ID] [NRC_CODE]`" + `
- Example: ` + "`7F 22 31`" + ` (NRC_REQUEST_OUT_OF_RANGE)

### Output Language and Format Rules:

- **Minimize explanatory text** - focus on actionable steps
- **Use technical shorthand** familiar to automotive testers
- **Avoid robotic or generic phrasing** - use practical engineering language
- **Ensure output is immediately executable** using Vector Canoe, CAPL, or diagnostic tools
- **Do not include engineering theory** unless absolutely required for test execution

### Additional Technical Guidance:

- Only include **technical calculations** if the requirement explicitly requires them for test execution
- If the requirement does NOT specify exact technical details, clearly mark as:
  - **"[Technical Detail: To be defined from ODX/CDD]"**
  - **"[Parameter: Refer to ECU specification]"**

### Final Notes:

- Return test cases in JSON array format
- Do not include extra comments or explanations outside the JSON structure
- Focus on **practical test execution** rather than comprehensive documentation
- Ensure **immediate implementability** by hardware validation teams

Testing approach: **%s** testing characteristics:
- Blackbox: Focus on input-output behavior without internal structure knowledge
- Graybox: Combine black box testing with some internal structure knowledge
- Whitebox: Focus on internal code structure, paths, and logic

Requirements to process:
%s

Generate practical automotive test cases following the above guidelines and return as JSON array.`

// GeneratePrompt builds the generation prompt over the indented
// requirements JSON.
func GeneratePrompt(profile Profile, requirementsJSON, testabilityType string) string {
	if profile == ProfileAutomotive {
		return fmt.Sprintf(automotivePromptTemplate, testabilityType, requirementsJSON)
	}
	return fmt.Sprintf(genericPromptTemplate, testabilityType, requirementsJSON, testabilityType)
}

const modifyPromptTemplate = `
Below are test cases that need to be modified according to the user's instruction.

Original Test Cases:
%s

User wants to modify the test cases with this instruction:
"%s"

Please return the updated versions of these test cases in the same JSON format, keeping the same structure but applying the requested modifications. Return as a JSON array with this exact structure:
[
  {
    "testCaseId": "TC_001",
    "requirementId": "%s",
    "description": "Updated description",
    "preconditions": "Updated preconditions",
    "steps": ["Step 1", "Step 2"],
    "expectedResult": "Updated expected result",
    "postconditions": "Updated postconditions"
  }
]

Make sure to preserve the original test case IDs and requirement IDs while applying the modifications.
`

const splitPromptTemplate = `
Below are test cases that need to be split according to the user's instruction.

Original Test Cases:
%s

User wants to split the test cases with this instruction:
"%s"

Please split each test case into multiple new test cases as requested. For each original test case, create multiple new test cases that cover different aspects or scenarios of the original test case.

Return the new test cases in JSON format as an array. Each split test case should have:
- A unique testCaseId (e.g., TC_001_A, TC_001_B for splits of TC_001)
- The same requirementId as the original
- Focused description for the specific scenario
- Appropriate preconditions, steps, and expected results
- Same postconditions or modified as needed

Format:
[
  {
    "testCaseId": "TC_001_A",
    "requirementId": "%s",
    "description": "Specific scenario A description",
    "preconditions": "Preconditions for scenario A",
    "steps": ["Step 1", "Step 2"],
    "expectedResult": "Expected result for scenario A",
    "postconditions": "Postconditions for scenario A"
  },
  {
    "testCaseId": "TC_001_B",
    "requirementId": "%s",
    "description": "Specific scenario B description",
    "preconditions": "Preconditions for scenario B",
    "steps": ["Step 1", "Step 2"],
    "expectedResult": "Expected result for scenario B",
    "postconditions": "Postconditions for scenario B"
  }
]

Make sure each split test case is focused and comprehensive.
`

// ModifyPrompt builds the modification prompt for one requirement group.
func ModifyPrompt(cases []testcase.TestCase, instruction, requirementID string) string {
	return fmt.Sprintf(modifyPromptTemplate, listCases(cases), instruction, requirementID)
}

// SplitPrompt builds the split prompt for one requirement group.
func SplitPrompt(cases []testcase.TestCase, instruction, requirementID string) string {
	return fmt.Sprintf(splitPromptTemplate, listCases(cases), instruction, requirementID, requirementID)
}

// listCases renders the group's cases as labeled blocks separated by ---.
func listCases(cases []testcase.TestCase) string {
	var sb strings.Builder
	for _, tc := range cases {
		fmt.Fprintf(&sb, `
Test Case ID: %s
Description: %s
Preconditions: %s
Steps: %s
Expected Result: %s
Postconditions: %s
---
`, tc.TestCaseID, tc.Description, tc.Preconditions,
			strings.Join(tc.Steps, "; "), tc.ExpectedResult, tc.Postconditions)
	}
	return sb.String()
}
