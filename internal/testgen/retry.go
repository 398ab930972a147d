package testgen

import (
	"errors"
	"math/rand/v2"
	"net/http"
	"time"

	"google.golang.org/genai"
)

// isRetryable reports whether an API failure is worth retrying on the
// same model. Rate limiting and server-side errors are transient;
// anything else fails over to the next model immediately.
func isRetryable(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
}

// backoff returns a duration for attempt n (0-indexed) with jitter.
func backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}
