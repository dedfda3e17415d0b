package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds application metrics
type Metrics struct {
	RequestCount     int64
	ErrorCount       int64
	CacheHits        int64
	CacheMisses      int64
	TBAAPICalls      int64
	DerivedRecords   int64
	RatingsComputed  int64
	RateLimitBlocks  int64
	StartTime        time.Time

	// Response time samples for percentile reporting
	responseTimes []time.Duration
	responseMu    sync.RWMutex

	// Status code tracking
	requestsByStatus map[int]int64
	statusMu         sync.RWMutex
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:        time.Now(),
		responseTimes:    make([]time.Duration, 0, 1000),
		requestsByStatus: make(map[int]int64),
	}
}

// IncrementRequest increments the request count
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// IncrementCacheHit increments cache hit count
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// IncrementCacheMiss increments cache miss count
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
}

// IncrementTBACalls increments the external statistics API call count
func (m *Metrics) IncrementTBACalls() {
	atomic.AddInt64(&m.TBAAPICalls, 1)
}

// AddDerivedRecords adds to the count of synthesized scouting records
func (m *Metrics) AddDerivedRecords(n int) {
	atomic.AddInt64(&m.DerivedRecords, int64(n))
}

// IncrementRatingsComputed increments the bulk recompute count
func (m *Metrics) IncrementRatingsComputed() {
	atomic.AddInt64(&m.RatingsComputed, 1)
}

// IncrementRateLimitBlock increments the count of rejected requests
func (m *Metrics) IncrementRateLimitBlock() {
	atomic.AddInt64(&m.RateLimitBlocks, 1)
}

// RecordResponseTime stores a response time sample (keeps last 1000)
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	m.responseMu.Lock()
	m.responseTimes = append(m.responseTimes, duration)
	if len(m.responseTimes) > 1000 {
		m.responseTimes = m.responseTimes[1:]
	}
	m.responseMu.Unlock()
}

// RecordRequestByStatus records request count by HTTP status code
func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.statusMu.Lock()
	defer m.statusMu.Unlock()
	m.requestsByStatus[statusCode]++
}

// percentile returns the given percentile of recorded response times
func (m *Metrics) percentile(p float64) time.Duration {
	m.responseMu.RLock()
	defer m.responseMu.RUnlock()

	if len(m.responseTimes) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(m.responseTimes))
	copy(sorted, m.responseTimes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

// GetStats returns a snapshot of all metrics
func (m *Metrics) GetStats() map[string]interface{} {
	m.statusMu.RLock()
	byStatus := make(map[int]int64, len(m.requestsByStatus))
	for code, count := range m.requestsByStatus {
		byStatus[code] = count
	}
	m.statusMu.RUnlock()

	return map[string]interface{}{
		"request_count":      atomic.LoadInt64(&m.RequestCount),
		"error_count":        atomic.LoadInt64(&m.ErrorCount),
		"cache_hits":         atomic.LoadInt64(&m.CacheHits),
		"cache_misses":       atomic.LoadInt64(&m.CacheMisses),
		"tba_api_calls":      atomic.LoadInt64(&m.TBAAPICalls),
		"derived_records":    atomic.LoadInt64(&m.DerivedRecords),
		"ratings_computed":   atomic.LoadInt64(&m.RatingsComputed),
		"rate_limit_blocks":  atomic.LoadInt64(&m.RateLimitBlocks),
		"requests_by_status": byStatus,
		"p50_ms":             m.percentile(0.50).Milliseconds(),
		"p95_ms":             m.percentile(0.95).Milliseconds(),
		"p99_ms":             m.percentile(0.99).Milliseconds(),
		"uptime_seconds":     time.Since(m.StartTime).Seconds(),
	}
}
