package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/intervention-planner-api/internal/dto"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for the health endpoint.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	schedulerDuration *prometheus.HistogramVec
	slotsEvaluated    prometheus.Counter
	datesSkipped      prometheus.Counter
	sessionsCommitted prometheus.Counter
	commitSkipped     *prometheus.CounterVec
	commitJobs        *prometheus.CounterVec
	queueDepth        func() int

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	suggestionRuns       uint64
	cycleRuns            uint64
	committedCount       uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	schedulerDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scheduler_run_duration_seconds",
		Help:    "Duration of scheduler computations",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"mode"})

	slotsEvaluated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_slots_evaluated_total",
		Help: "Weekly slots evaluated by the suggestion engine",
	})

	datesSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_cycle_dates_skipped_total",
		Help: "Cycle dates dropped because they fell on non-student days",
	})

	sessionsCommitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_sessions_committed_total",
		Help: "Sessions created by commit jobs",
	})

	commitSkipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_commit_skipped_total",
		Help: "Candidate dates left out of a commit",
	}, []string{"reason"})

	commitJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_commit_jobs_total",
		Help: "Commit jobs by kind and final status",
	}, []string{"kind", "status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		schedulerDuration, slotsEvaluated, datesSkipped, sessionsCommitted, commitSkipped, commitJobs, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:          registry,
		handler:           handler,
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		cacheLatency:      cacheLatency,
		cacheWrite:        cacheWrite,
		cacheHitRatio:     cacheHitRatio,
		cacheHits:         cacheHits,
		cacheMisses:       cacheMisses,
		schedulerDuration: schedulerDuration,
		slotsEvaluated:    slotsEvaluated,
		datesSkipped:      datesSkipped,
		sessionsCommitted: sessionsCommitted,
		commitSkipped:     commitSkipped,
		commitJobs:        commitJobs,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// TrackQueueDepth registers a gauge reading the commit queue backlog.
func (m *MetricsService) TrackQueueDepth(depth func() int) {
	if m == nil || depth == nil || m.queueDepth != nil {
		return
	}
	m.queueDepth = depth
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "scheduler_commit_queue_depth",
		Help: "Commit jobs waiting for the worker",
	}, func() float64 {
		return float64(depth())
	}))
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveSuggestions records a weekly suggestion run.
func (m *MetricsService) ObserveSuggestions(slots int, duration time.Duration) {
	if m == nil {
		return
	}
	m.schedulerDuration.WithLabelValues("weekly").Observe(duration.Seconds())
	m.slotsEvaluated.Add(float64(slots))
	atomic.AddUint64(&m.suggestionRuns, 1)
}

// ObserveCycle records a cycle preview run.
func (m *MetricsService) ObserveCycle(skipped int, duration time.Duration) {
	if m == nil {
		return
	}
	m.schedulerDuration.WithLabelValues("cycle").Observe(duration.Seconds())
	m.datesSkipped.Add(float64(skipped))
	atomic.AddUint64(&m.cycleRuns, 1)
}

// RecordCommit records the outcome of a finished commit job.
func (m *MetricsService) RecordCommit(kind string, status string, created int, skipped []string) {
	if m == nil {
		return
	}
	m.commitJobs.WithLabelValues(kind, status).Inc()
	m.sessionsCommitted.Add(float64(created))
	atomic.AddUint64(&m.committedCount, uint64(created))
	for _, reason := range skipped {
		m.commitSkipped.WithLabelValues(reason).Inc()
	}
}

// Snapshot returns aggregated metrics suitable for the health endpoint.
func (m *MetricsService) Snapshot() dto.MetricsSnapshot {
	if m == nil {
		return dto.MetricsSnapshot{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if totalLookups := hits + misses; totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	depth := 0
	if m.queueDepth != nil {
		depth = m.queueDepth()
	}

	return dto.MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		CacheHitRatio:            cacheRatio,
		SuggestionRuns:           atomic.LoadUint64(&m.suggestionRuns),
		CycleRuns:                atomic.LoadUint64(&m.cycleRuns),
		SessionsCommitted:        atomic.LoadUint64(&m.committedCount),
		CommitQueueDepth:         depth,
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
