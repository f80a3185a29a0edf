package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	FeedsFetched      int64
	FeedsFailed       int64
	EntriesSeen       int64
	EntriesMatched    int64
	DuplicatesSkipped int64
	PagesScraped      int64
	ScrapeFailures    int64
	CacheHits         int64
	CacheMisses       int64
	SentimentCalls    int64
	SentimentFailures int64

	// Timings
	LastAggregationTime    time.Duration
	TotalAggregationTime   time.Duration
	AverageAggregationTime time.Duration
	AggregationCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementFeedsFetched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFetched++
}

func (m *Metrics) IncrementFeedsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FeedsFailed++
}

func (m *Metrics) IncrementEntriesSeen() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntriesSeen++
}

func (m *Metrics) IncrementEntriesMatched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntriesMatched++
}

func (m *Metrics) IncrementDuplicatesSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesSkipped++
}

func (m *Metrics) IncrementPagesScraped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PagesScraped++
}

func (m *Metrics) IncrementScrapeFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ScrapeFailures++
}

func (m *Metrics) IncrementCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *Metrics) IncrementCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *Metrics) IncrementSentimentCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentimentCalls++
}

func (m *Metrics) IncrementSentimentFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SentimentFailures++
}

func (m *Metrics) RecordAggregationTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastAggregationTime = duration
	m.TotalAggregationTime += duration
	m.AggregationCount++

	if m.AggregationCount > 0 {
		m.AverageAggregationTime = m.TotalAggregationTime / time.Duration(m.AggregationCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"feeds_fetched":               m.FeedsFetched,
		"feeds_failed":                m.FeedsFailed,
		"entries_seen":                m.EntriesSeen,
		"entries_matched":             m.EntriesMatched,
		"duplicates_skipped":          m.DuplicatesSkipped,
		"pages_scraped":               m.PagesScraped,
		"scrape_failures":             m.ScrapeFailures,
		"cache_hits":                  m.CacheHits,
		"cache_misses":                m.CacheMisses,
		"sentiment_calls":             m.SentimentCalls,
		"sentiment_failures":          m.SentimentFailures,
		"last_aggregation_time_ms":    m.LastAggregationTime.Milliseconds(),
		"average_aggregation_time_ms": m.AverageAggregationTime.Milliseconds(),
		"last_run_time":               m.LastRunTime.Format(time.RFC3339),
		"last_error_time":             m.LastErrorTime.Format(time.RFC3339),
		"last_error":                  m.LastError,
		"is_healthy":                  m.IsHealthy,
	}
}
