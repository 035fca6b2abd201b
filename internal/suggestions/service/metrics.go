package service

import (
	"sync/atomic"
	"time"
)

// Metrics tracks relay outcomes and upstream call stats. The zero value is
// ready to use; share one across relays to aggregate.
type Metrics struct {
	upstreamCalls    int64
	upstreamErrors   int64
	upstreamLatency  int64 // Total latency in nanoseconds
	suggestions      int64
	methodRejections int64
	configErrors     int64
	invalidBodies    int64
}

// MetricsSnapshot is the JSON view of Metrics
type MetricsSnapshot struct {
	UpstreamCalls        int64   `json:"upstream_calls"`
	UpstreamErrors       int64   `json:"upstream_errors"`
	AvgUpstreamLatencyMs float64 `json:"avg_upstream_latency_ms"`
	UpstreamErrorRate    float64 `json:"upstream_error_rate"`
	Suggestions          int64   `json:"suggestions"`
	MethodRejections     int64   `json:"method_rejections"`
	ConfigErrors         int64   `json:"config_errors"`
	InvalidBodies        int64   `json:"invalid_bodies"`
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) recordUpstreamCall(duration time.Duration, err error) {
	atomic.AddInt64(&m.upstreamCalls, 1)
	atomic.AddInt64(&m.upstreamLatency, duration.Nanoseconds())
	if err != nil {
		atomic.AddInt64(&m.upstreamErrors, 1)
	}
}

func (m *Metrics) recordSuggestion()      { atomic.AddInt64(&m.suggestions, 1) }
func (m *Metrics) recordMethodRejection() { atomic.AddInt64(&m.methodRejections, 1) }
func (m *Metrics) recordConfigError()     { atomic.AddInt64(&m.configErrors, 1) }
func (m *Metrics) recordInvalidBody()     { atomic.AddInt64(&m.invalidBodies, 1) }

// Reset zeroes every counter
func (m *Metrics) Reset() {
	atomic.StoreInt64(&m.upstreamCalls, 0)
	atomic.StoreInt64(&m.upstreamErrors, 0)
	atomic.StoreInt64(&m.upstreamLatency, 0)
	atomic.StoreInt64(&m.suggestions, 0)
	atomic.StoreInt64(&m.methodRejections, 0)
	atomic.StoreInt64(&m.configErrors, 0)
	atomic.StoreInt64(&m.invalidBodies, 0)
}

// AverageUpstreamLatency returns the average latency in milliseconds
func (m *Metrics) AverageUpstreamLatency() float64 {
	calls := atomic.LoadInt64(&m.upstreamCalls)
	if calls == 0 {
		return 0
	}
	avgNs := float64(atomic.LoadInt64(&m.upstreamLatency)) / float64(calls)
	return avgNs / 1e6 // Convert nanoseconds to milliseconds
}

// UpstreamErrorRate returns the error rate as a percentage
func (m *Metrics) UpstreamErrorRate() float64 {
	calls := atomic.LoadInt64(&m.upstreamCalls)
	if calls == 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&m.upstreamErrors)) / float64(calls) * 100
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		UpstreamCalls:        atomic.LoadInt64(&m.upstreamCalls),
		UpstreamErrors:       atomic.LoadInt64(&m.upstreamErrors),
		AvgUpstreamLatencyMs: m.AverageUpstreamLatency(),
		UpstreamErrorRate:    m.UpstreamErrorRate(),
		Suggestions:          atomic.LoadInt64(&m.suggestions),
		MethodRejections:     atomic.LoadInt64(&m.methodRejections),
		ConfigErrors:         atomic.LoadInt64(&m.configErrors),
		InvalidBodies:        atomic.LoadInt64(&m.invalidBodies),
	}
}
