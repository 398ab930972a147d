package testgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/dgallion1/testgen/internal/refdoc"
	"github.com/dgallion1/testgen/internal/testcase"
)

// ErrUnparsableReply means the model's reply held no decodable JSON
// array. Callers surface this with their own user-facing message.
var ErrUnparsableReply = errors.New("failed to parse test cases from model reply")

// generator is the model call the service depends on; tests substitute a
// stub.
type generator interface {
	Generate(ctx context.Context, contents []*genai.Content, params CallParams) (string, error)
}

// ServiceConfig tunes the generation flow.
type ServiceConfig struct {
	Profile Profile

	// Sampling overrides; a negative value keeps the profile default.
	Temperature float64
	TopP        float64

	MaxOutputTokens int32

	// MaxConcurrent bounds parallel per-group modification calls.
	MaxConcurrent int

	AttachmentLimits refdoc.Limits
}

// Service implements the test case generation, modification and split
// flows over a model client.
type Service struct {
	gen generator
	cfg ServiceConfig
	log *slog.Logger
}

func NewService(gen generator, cfg ServiceConfig, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if !cfg.Profile.Valid() {
		cfg.Profile = ProfileGeneric
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	return &Service{gen: gen, cfg: cfg, log: log}
}

// generateParams layers the configured overrides onto the profile
// defaults.
func (s *Service) generateParams() CallParams {
	params := s.cfg.Profile.Params()
	if s.cfg.Temperature >= 0 {
		params.Temperature = float32(s.cfg.Temperature)
	}
	if s.cfg.TopP >= 0 {
		params.TopP = float32(s.cfg.TopP)
	}
	if s.cfg.MaxOutputTokens > 0 {
		params.MaxOutputTokens = s.cfg.MaxOutputTokens
	}
	return params
}

// Generate produces test cases for the given requirements. An optional
// reference PDF from the upload is attached to the prompt.
func (s *Service) Generate(ctx context.Context, reqs []testcase.Requirement, testabilityType string, refPDF []byte) ([]testcase.TestCase, error) {
	reqJSON, err := json.MarshalIndent(reqs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal requirements: %w", err)
	}

	prompt := GeneratePrompt(s.cfg.Profile, string(reqJSON), testabilityType)
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	if len(refPDF) > 0 {
		contents = append(contents, genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText("Attached PDF file for context."),
			genai.NewPartFromBytes(refPDF, "application/pdf"),
		}, genai.RoleUser))
	}

	text, err := s.gen.Generate(ctx, contents, s.generateParams())
	if err != nil {
		return nil, fmt.Errorf("generate test cases: %w", err)
	}

	cases, err := testcase.DecodeGenerated([]byte(carveJSONArray(text)), testabilityType)
	if err != nil {
		s.log.Error("unparsable generation reply",
			"error", err, "reply", truncate(text, 200))
		return nil, ErrUnparsableReply
	}
	s.log.Info("test cases generated",
		"requirements", len(reqs), "test_cases", len(cases))
	return cases, nil
}

// groupOutcome is the result of one requirement group's model call.
// Exactly one of cases or split is set when err is nil; cases holds the
// originals when the reply could not be parsed.
type groupOutcome struct {
	cases []testcase.TestCase
	split []testcase.SplitCase
	err   error
}

// Modify rewrites or splits test cases per the user's instruction, one
// model call per requirement group, bounded by the configured
// concurrency. Results assemble in group order, so output order is
// deterministic. Attachments are buffered once and sent with every
// group's call.
func (s *Service) Modify(ctx context.Context, cases []testcase.TestCase, instruction string, split bool, atts []refdoc.Attachment) ([]testcase.TestCase, error) {
	groups := testcase.GroupByRequirement(cases)
	attContents := refdoc.Contents(atts, s.cfg.AttachmentLimits, s.log)

	outcomes := make([]groupOutcome, len(groups))
	sem := make(chan struct{}, s.cfg.MaxConcurrent)
	var wg sync.WaitGroup
	for i, g := range groups {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, g testcase.Group) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = s.modifyGroup(ctx, g, instruction, split, attContents)
		}(i, g)
	}
	wg.Wait()

	now := time.Now().Unix()
	var out []testcase.TestCase
	for _, o := range outcomes {
		if o.err != nil {
			return nil, o.err
		}
		for _, sc := range o.split {
			n := len(out) + 1
			tc := sc.TestCase
			tc.ID = fmt.Sprintf("tc-split-%d-%d", n, now)
			if !sc.HasTestCaseID {
				tc.TestCaseID = fmt.Sprintf("TC_%03d", n)
			}
			out = append(out, tc)
		}
		out = append(out, o.cases...)
	}
	s.log.Info("test cases modified",
		"groups", len(groups), "split", split, "test_cases", len(out))
	return out, nil
}

func (s *Service) modifyGroup(ctx context.Context, g testcase.Group, instruction string, split bool, attContents []*genai.Content) groupOutcome {
	var prompt string
	if split {
		prompt = SplitPrompt(g.Cases, instruction, g.RequirementID)
	} else {
		prompt = ModifyPrompt(g.Cases, instruction, g.RequirementID)
	}
	contents := make([]*genai.Content, 0, 1+len(attContents))
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))
	contents = append(contents, attContents...)

	text, err := s.gen.Generate(ctx, contents, ModifyParams)
	if err != nil {
		return groupOutcome{err: fmt.Errorf("modify group %s: %w", g.RequirementID, err)}
	}
	payload := []byte(carveJSONArray(text))

	if split {
		testability := "blackbox"
		if len(g.Cases) > 0 {
			testability = g.Cases[0].TestabilityType
		}
		sc, err := testcase.DecodeSplit(payload, g.RequirementID, testability)
		if err != nil {
			// An unparsable reply keeps the group's originals; a
			// partially mangled batch must not drop test cases.
			s.log.Error("unparsable split reply, keeping originals",
				"requirement", g.RequirementID, "error", err, "reply", truncate(text, 200))
			return groupOutcome{cases: g.Cases}
		}
		return groupOutcome{split: sc}
	}

	mc, err := testcase.DecodeModified(payload, g.Cases)
	if err != nil {
		s.log.Error("unparsable modification reply, keeping originals",
			"requirement", g.RequirementID, "error", err, "reply", truncate(text, 200))
		return groupOutcome{cases: g.Cases}
	}
	return groupOutcome{cases: mc}
}
