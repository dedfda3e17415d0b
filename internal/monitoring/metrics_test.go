package monitoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.IncrementRequest()
	m.IncrementRequest()
	m.IncrementError()
	m.IncrementCacheHit()
	m.IncrementCacheMiss()
	m.IncrementTBACalls()
	m.AddDerivedRecords(6)
	m.IncrementRatingsComputed()

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats["request_count"])
	assert.Equal(t, int64(1), stats["error_count"])
	assert.Equal(t, int64(1), stats["cache_hits"])
	assert.Equal(t, int64(1), stats["cache_misses"])
	assert.Equal(t, int64(1), stats["tba_api_calls"])
	assert.Equal(t, int64(6), stats["derived_records"])
	assert.Equal(t, int64(1), stats["ratings_computed"])
}

func TestMetricsPercentiles(t *testing.T) {
	m := NewMetrics()

	for i := 1; i <= 100; i++ {
		m.RecordResponseTime(time.Duration(i) * time.Millisecond)
	}

	assert.Equal(t, int64(50), m.percentile(0.50).Milliseconds())
	assert.Equal(t, int64(95), m.percentile(0.95).Milliseconds())
}

func TestMetricsRequestsByStatus(t *testing.T) {
	m := NewMetrics()

	m.RecordRequestByStatus(200)
	m.RecordRequestByStatus(200)
	m.RecordRequestByStatus(502)

	stats := m.GetStats()
	byStatus := stats["requests_by_status"].(map[int]int64)
	assert.Equal(t, int64(2), byStatus[200])
	assert.Equal(t, int64(1), byStatus[502])
}
