package testgen

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
}

// Usage is the token accounting of one model call.
type Usage struct {
	PromptTokens int64
	OutputTokens int64
	TotalTokens  int64
}

// StatsSnapshot is a point-in-time aggregate of model call latencies and
// token usage.
type StatsSnapshot struct {
	Count        int     `json:"count"`
	MinMs        int64   `json:"min_ms"`
	MaxMs        int64   `json:"max_ms"`
	AvgMs        float64 `json:"avg_ms"`
	P50Ms        float64 `json:"p50_ms"`
	P95Ms        float64 `json:"p95_ms"`
	P99Ms        float64 `json:"p99_ms"`
	Successes    int64   `json:"successes"`
	Failures     int64   `json:"failures"`
	PromptTokens int64   `json:"prompt_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	TotalTokens  int64   `json:"total_tokens"`
}

// Stats tracks recent model call latencies within a rolling window, plus
// lifetime success/failure counts and token totals.
type Stats struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration

	successes int64
	failures  int64
	usage     Usage
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

// RecordSuccess adds a successful call with its token usage.
func (s *Stats) RecordSuccess(durationMs int64, usage Usage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordLocked(durationMs)
	s.successes++
	s.usage.PromptTokens += usage.PromptTokens
	s.usage.OutputTokens += usage.OutputTokens
	s.usage.TotalTokens += usage.TotalTokens
}

// RecordFailure adds a failed call. Failed calls count toward the latency
// window too; a slow failure is still a slow call.
func (s *Stats) RecordFailure(durationMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordLocked(durationMs)
	s.failures++
}

func (s *Stats) recordLocked(durationMs int64) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()
	s.pruneLocked(now)
	s.samples = append(s.samples, sample{
		timestamp:  now,
		durationMs: durationMs,
	})
}

func (s *Stats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	snap := StatsSnapshot{
		Successes:    s.successes,
		Failures:     s.failures,
		PromptTokens: s.usage.PromptTokens,
		OutputTokens: s.usage.OutputTokens,
		TotalTokens:  s.usage.TotalTokens,
	}
	if len(s.samples) == 0 {
		return snap
	}

	values := make([]int64, 0, len(s.samples))
	var sum int64
	for _, sm := range s.samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	snap.Count = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.timestamp.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
