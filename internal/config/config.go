package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Gemini API backend
	GeminiAPIKey string

	// Vertex AI backend
	UseVertex bool
	Project   string
	Location  string

	// Models
	Model         string
	FallbackModel string

	// Generation
	PromptProfile   string
	Temperature     float64 // negative = profile default
	TopP            float64 // negative = profile default
	MaxOutputTokens int
	LLMTimeout      time.Duration
	MaxRetries      int
	MaxConcurrent   int

	// Upload limits
	MaxUploadBytes      int64
	MaxAttachmentBytes  int64
	MaxAttachmentTokens int

	// HTTP
	AllowedOrigins []string

	// Auth; empty disables bearer auth
	APIKey string

	LogLevel string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8000"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),

		UseVertex: envBool("GOOGLE_GENAI_USE_VERTEXAI", false),
		Project:   os.Getenv("GOOGLE_CLOUD_PROJECT"),
		Location:  envOr("GOOGLE_CLOUD_LOCATION", "global"),

		Model:         envOr("GEMINI_MODEL", "gemini-2.0-flash-001"),
		FallbackModel: envOr("GEMINI_FALLBACK_MODEL", "gemini-2.0-flash"),

		PromptProfile:   envOr("PROMPT_PROFILE", "generic"),
		Temperature:     envFloat("LLM_TEMPERATURE", -1),
		TopP:            envFloat("LLM_TOP_P", -1),
		MaxOutputTokens: envInt("LLM_MAX_OUTPUT_TOKENS", 8192),
		LLMTimeout:      envDuration("LLM_TIMEOUT", 120*time.Second),
		MaxRetries:      envInt("LLM_MAX_RETRIES", 3),
		MaxConcurrent:   envInt("LLM_MAX_CONCURRENT", 4),

		MaxUploadBytes:      envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB
		MaxAttachmentBytes:  envInt64("MAX_ATTACHMENT_BYTES", 10485760),
		MaxAttachmentTokens: envInt("MAX_ATTACHMENT_TOKENS", 8000),

		AllowedOrigins: splitList(envOr("ALLOWED_ORIGINS", "*")),

		APIKey: os.Getenv("API_KEY"),

		LogLevel: envOr("LOG_LEVEL", "info"),
	}

	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 8192
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 3
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.MaxAttachmentBytes <= 0 {
		cfg.MaxAttachmentBytes = 10485760
	}
	if cfg.MaxAttachmentTokens <= 0 {
		cfg.MaxAttachmentTokens = 8000
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 120 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	return cfg
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.UseVertex {
		if c.Project == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required with GOOGLE_GENAI_USE_VERTEXAI")
		}
	} else if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required (or enable GOOGLE_GENAI_USE_VERTEXAI)")
	}
	if c.Model == "" {
		return fmt.Errorf("GEMINI_MODEL must not be empty")
	}
	switch c.PromptProfile {
	case "generic", "automotive":
	default:
		return fmt.Errorf("unknown PROMPT_PROFILE %q", c.PromptProfile)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown LOG_LEVEL %q", c.LogLevel)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
