package dto

import "time"

// MetricsSnapshot summarises in-process counters for the health endpoint.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	SuggestionRuns           uint64    `json:"suggestion_runs"`
	CycleRuns                uint64    `json:"cycle_runs"`
	SessionsCommitted        uint64    `json:"sessions_committed"`
	CommitQueueDepth         int       `json:"commit_queue_depth"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

// ReadinessReport lists the state of each backing dependency.
type ReadinessReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
