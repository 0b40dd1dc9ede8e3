package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds application metrics. Counters are mirrored into the
// prometheus registry exposed on /metrics.
type Metrics struct {
	RequestCount        int64
	ErrorCount          int64
	CacheHits           int64
	CacheMisses         int64
	ChatMessages        int64
	AverageResponseTime int64 // in nanoseconds
	StartTime           time.Time

	ResponseTimes      []time.Duration
	ResponseTimesMutex sync.RWMutex

	RequestCountByStatus map[int]int64
	StatusMutex          sync.RWMutex

	CalculationsByOutcome map[string]int64
	CalculationsByProfile map[string]int64
	CalculationMutex      sync.RWMutex

	RateLimitIPBlocks      int64
	RateLimitChatBlocks    int64
	RateLimitRedisErrors   int64
	RateLimitFallbackCount int64

	prom *promCollectors
}

func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:             time.Now(),
		ResponseTimes:         make([]time.Duration, 0, 1000),
		RequestCountByStatus:  make(map[int]int64),
		CalculationsByOutcome: make(map[string]int64),
		CalculationsByProfile: make(map[string]int64),
		prom:                  newPromCollectors(),
	}
}

func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
	m.prom.cacheLookups.WithLabelValues("hit").Inc()
}

func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
	m.prom.cacheLookups.WithLabelValues("miss").Inc()
}

// RecordCalculation counts a calculation by profile and outcome
func (m *Metrics) RecordCalculation(profile, outcome string, duration time.Duration) {
	m.CalculationMutex.Lock()
	m.CalculationsByOutcome[outcome]++
	if profile != "" {
		m.CalculationsByProfile[profile]++
	}
	m.CalculationMutex.Unlock()

	if profile == "" {
		profile = "unknown"
	}
	m.prom.calculations.WithLabelValues(profile, outcome).Inc()
	m.prom.calculationDuration.Observe(duration.Seconds())
}

func (m *Metrics) IncrementChatMessages() {
	atomic.AddInt64(&m.ChatMessages, 1)
	m.prom.chatMessages.Inc()
}

// RecordHTTPRequest records one finished request
func (m *Metrics) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	m.RecordResponseTime(duration)
	m.RecordRequestByStatus(statusCode)
	m.prom.observeHTTP(method, route, statusCode, duration)
}

// RecordResponseTime records response time for averaging and percentiles
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	current := atomic.LoadInt64(&m.AverageResponseTime)
	newAverage := (current + duration.Nanoseconds()) / 2
	atomic.StoreInt64(&m.AverageResponseTime, newAverage)

	// keep last 1000 samples
	m.ResponseTimesMutex.Lock()
	m.ResponseTimes = append(m.ResponseTimes, duration)
	if len(m.ResponseTimes) > 1000 {
		m.ResponseTimes = m.ResponseTimes[1:]
	}
	m.ResponseTimesMutex.Unlock()
}

func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.StatusMutex.Lock()
	defer m.StatusMutex.Unlock()
	m.RequestCountByStatus[statusCode]++
}

// GetPercentileResponseTime calculates percentile response time
func (m *Metrics) GetPercentileResponseTime(percentile float64) time.Duration {
	m.ResponseTimesMutex.RLock()
	defer m.ResponseTimesMutex.RUnlock()

	if len(m.ResponseTimes) == 0 {
		return 0
	}

	times := make([]time.Duration, len(m.ResponseTimes))
	copy(times, m.ResponseTimes)

	sort.Slice(times, func(i, j int) bool {
		return times[i] < times[j]
	})

	index := int(float64(len(times)-1) * percentile / 100.0)
	if index >= len(times) {
		index = len(times) - 1
	}

	return times[index]
}

func (m *Metrics) GetStatusCodeDistribution() map[int]int64 {
	m.StatusMutex.RLock()
	defer m.StatusMutex.RUnlock()

	distribution := make(map[int]int64, len(m.RequestCountByStatus))
	for code, count := range m.RequestCountByStatus {
		distribution[code] = count
	}
	return distribution
}

// GetCalculationStats returns calculation counts by outcome and by profile
func (m *Metrics) GetCalculationStats() map[string]interface{} {
	m.CalculationMutex.RLock()
	defer m.CalculationMutex.RUnlock()

	byOutcome := make(map[string]int64, len(m.CalculationsByOutcome))
	for k, v := range m.CalculationsByOutcome {
		byOutcome[k] = v
	}
	byProfile := make(map[string]int64, len(m.CalculationsByProfile))
	for k, v := range m.CalculationsByProfile {
		byProfile[k] = v
	}

	return map[string]interface{}{
		"by_outcome": byOutcome,
		"by_profile": byProfile,
	}
}

// GetStats returns current metrics statistics
func (m *Metrics) GetStats() map[string]interface{} {
	requests := atomic.LoadInt64(&m.RequestCount)
	errors := atomic.LoadInt64(&m.ErrorCount)
	cacheHits := atomic.LoadInt64(&m.CacheHits)
	cacheMisses := atomic.LoadInt64(&m.CacheMisses)
	avgResponseTime := atomic.LoadInt64(&m.AverageResponseTime)

	errorRate := float64(0)
	if requests > 0 {
		errorRate = float64(errors) / float64(requests) * 100
	}

	cacheHitRate := float64(0)
	if total := cacheHits + cacheMisses; total > 0 {
		cacheHitRate = float64(cacheHits) / float64(total) * 100
	}

	return map[string]interface{}{
		"uptime_seconds":           time.Since(m.StartTime).Seconds(),
		"total_requests":           requests,
		"error_count":              errors,
		"error_rate_percent":       errorRate,
		"cache_hits":               cacheHits,
		"cache_misses":             cacheMisses,
		"cache_hit_rate_percent":   cacheHitRate,
		"chat_messages":            atomic.LoadInt64(&m.ChatMessages),
		"avg_response_time_ms":     float64(avgResponseTime) / 1000000,
		"p50_response_time_ms":     float64(m.GetPercentileResponseTime(50)) / 1000000,
		"p95_response_time_ms":     float64(m.GetPercentileResponseTime(95)) / 1000000,
		"p99_response_time_ms":     float64(m.GetPercentileResponseTime(99)) / 1000000,
		"status_code_distribution": m.GetStatusCodeDistribution(),
		"calculations":             m.GetCalculationStats(),
		"rate_limit":               m.GetRateLimitStats(),
		"start_time":               m.StartTime.Format(time.RFC3339),
	}
}

func (m *Metrics) IncrementRateLimitIPBlock() {
	atomic.AddInt64(&m.RateLimitIPBlocks, 1)
	m.prom.rateLimitBlocks.WithLabelValues("ip").Inc()
}

func (m *Metrics) IncrementRateLimitChatBlock() {
	atomic.AddInt64(&m.RateLimitChatBlocks, 1)
	m.prom.rateLimitBlocks.WithLabelValues("chat").Inc()
}

func (m *Metrics) IncrementRateLimitRedisError() {
	atomic.AddInt64(&m.RateLimitRedisErrors, 1)
	m.prom.rateLimitRedisErrors.Inc()
}

func (m *Metrics) IncrementRateLimitFallback() {
	atomic.AddInt64(&m.RateLimitFallbackCount, 1)
}

func (m *Metrics) GetRateLimitStats() map[string]interface{} {
	return map[string]interface{}{
		"ip_blocks":      atomic.LoadInt64(&m.RateLimitIPBlocks),
		"chat_blocks":    atomic.LoadInt64(&m.RateLimitChatBlocks),
		"redis_errors":   atomic.LoadInt64(&m.RateLimitRedisErrors),
		"fallback_count": atomic.LoadInt64(&m.RateLimitFallbackCount),
	}
}
