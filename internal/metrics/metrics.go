package metrics

import (
	"sync"
	"time"

	"github.com/deusflow/transferradar/internal/entity"
)

// Metrics holds query counters for one service instance.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	ClubQueries      int64
	PlayerQueries    int64
	LinkQueries      int64
	NotFound         int64
	UpstreamFailures int64
	ArticlesScanned  int64

	// Timings
	LastQueryTime    time.Duration
	AverageQueryTime time.Duration
	TotalQueryTime   time.Duration
	QueryCount       int64

	// Status
	StartedAt     time.Time
	LastErrorTime time.Time
	LastError     string
}

func New() *Metrics {
	return &Metrics{StartedAt: time.Now()}
}

func (m *Metrics) IncrementQuery(typ entity.Type) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch typ {
	case entity.Player:
		m.PlayerQueries++
	default:
		m.ClubQueries++
	}
}

func (m *Metrics) IncrementLinkQueries() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LinkQueries++
}

func (m *Metrics) IncrementNotFound() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotFound++
}

func (m *Metrics) AddArticlesScanned(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesScanned += int64(n)
}

func (m *Metrics) RecordUpstreamFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpstreamFailures++
	m.LastError = err.Error()
	m.LastErrorTime = time.Now()
}

func (m *Metrics) RecordQueryTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastQueryTime = duration
	m.TotalQueryTime += duration
	m.QueryCount++
	m.AverageQueryTime = m.TotalQueryTime / time.Duration(m.QueryCount)
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := map[string]interface{}{
		"club_queries":          m.ClubQueries,
		"player_queries":        m.PlayerQueries,
		"link_queries":          m.LinkQueries,
		"not_found":             m.NotFound,
		"upstream_failures":     m.UpstreamFailures,
		"articles_scanned":      m.ArticlesScanned,
		"last_query_time_ms":    m.LastQueryTime.Milliseconds(),
		"average_query_time_ms": m.AverageQueryTime.Milliseconds(),
		"queries_timed":         m.QueryCount,
		"started_at":            m.StartedAt.Format(time.RFC3339),
		"last_error":            m.LastError,
	}
	if !m.LastErrorTime.IsZero() {
		stats["last_error_time"] = m.LastErrorTime.Format(time.RFC3339)
	}
	return stats
}
