// Package testgen generates, modifies and splits test cases by calling
// the Gemini API over extracted requirements.
package testgen

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"google.golang.org/genai"
)

// ClientConfig selects the model backend and call discipline.
type ClientConfig struct {
	// Gemini API backend.
	APIKey string

	// Vertex AI backend; used instead of the API key when UseVertex is
	// set.
	UseVertex bool
	Project   string
	Location  string

	Model         string
	FallbackModel string

	MaxRetries int
	Timeout    time.Duration
}

// Client wraps the Gemini SDK with retries, model fallback and call
// stats. Safe for concurrent use.
type Client struct {
	genai         *genai.Client
	model         string
	fallbackModel string
	maxRetries    int
	timeout       time.Duration
	log           *slog.Logger

	Stats *Stats
}

// NewClient connects to the configured backend. The SDK owns transport
// and credentials; nothing else in this package talks to the network.
func NewClient(ctx context.Context, cfg ClientConfig, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	cc := &genai.ClientConfig{}
	if cfg.UseVertex {
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	} else {
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	}
	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Client{
		genai:         gc,
		model:         cfg.Model,
		fallbackModel: cfg.FallbackModel,
		maxRetries:    cfg.MaxRetries,
		timeout:       cfg.Timeout,
		log:           log,
		Stats:         NewStats(time.Hour),
	}, nil
}

// Model returns the primary model name.
func (c *Client) Model() string { return c.model }

// CallParams are the sampling settings of one generation call.
type CallParams struct {
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
}

// Generate issues a single GenerateContent call and returns the reply
// text. Transient failures are retried with backoff; any other failure
// moves on to the fallback model before giving up.
func (c *Client) Generate(ctx context.Context, contents []*genai.Content, params CallParams) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(params.Temperature),
		TopP:            genai.Ptr(params.TopP),
		MaxOutputTokens: params.MaxOutputTokens,
	}

	models := []string{c.model}
	if c.fallbackModel != "" && c.fallbackModel != c.model {
		models = append(models, c.fallbackModel)
	}

	var lastErr error
	for _, model := range models {
		for attempt := 0; attempt <= c.maxRetries; attempt++ {
			text, err := c.call(ctx, model, contents, config)
			if err == nil {
				return text, nil
			}
			lastErr = err
			if !isRetryable(err) {
				c.log.Warn("model call failed", "model", model, "error", err)
				break
			}
			c.log.Warn("retryable model error", "model", model, "attempt", attempt, "error", err)
			select {
			case <-time.After(backoff(attempt)):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", fmt.Errorf("all models failed: %w", lastErr)
}

func (c *Client) call(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.genai.Models.GenerateContent(ctx, model, contents, config)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		c.Stats.RecordFailure(elapsed)
		return "", fmt.Errorf("generate content: %w", err)
	}
	c.Stats.RecordSuccess(elapsed, usageOf(resp))
	return resp.Text(), nil
}

func usageOf(resp *genai.GenerateContentResponse) Usage {
	u := resp.UsageMetadata
	if u == nil {
		return Usage{}
	}
	return Usage{
		PromptTokens: int64(u.PromptTokenCount),
		OutputTokens: int64(u.CandidatesTokenCount),
		TotalTokens:  int64(u.TotalTokenCount),
	}
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// carveJSONArray cuts the text between the first '[' and the last ']',
// after stripping a surrounding code fence. The model wraps its arrays in
// prose more often than not. Text without brackets is returned whole so
// the decoder reports the real problem.
func carveJSONArray(s string) string {
	s = stripCodeBlock(s)
	start := strings.Index(s, "[")
	if start == -1 {
		return s
	}
	end := strings.LastIndex(s, "]")
	if end < start {
		return s
	}
	return s[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
