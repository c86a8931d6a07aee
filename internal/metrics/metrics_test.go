package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/deusflow/transferradar/internal/entity"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.IncrementQuery(entity.Club)
	m.IncrementQuery(entity.Club)
	m.IncrementQuery(entity.Player)
	m.IncrementLinkQueries()
	m.IncrementNotFound()
	m.AddArticlesScanned(12)
	m.RecordUpstreamFailure(errors.New("feed down"))

	stats := m.GetStats()
	assert.EqualValues(t, 2, stats["club_queries"])
	assert.EqualValues(t, 1, stats["player_queries"])
	assert.EqualValues(t, 1, stats["link_queries"])
	assert.EqualValues(t, 1, stats["not_found"])
	assert.EqualValues(t, 12, stats["articles_scanned"])
	assert.EqualValues(t, 1, stats["upstream_failures"])
	assert.Equal(t, "feed down", stats["last_error"])
	assert.Contains(t, stats, "last_error_time")
}

func TestMetrics_QueryTimeAverage(t *testing.T) {
	m := New()
	m.RecordQueryTime(10 * time.Millisecond)
	m.RecordQueryTime(30 * time.Millisecond)

	stats := m.GetStats()
	assert.EqualValues(t, 30, stats["last_query_time_ms"])
	assert.EqualValues(t, 20, stats["average_query_time_ms"])
	assert.EqualValues(t, 2, stats["queries_timed"])
	assert.NotContains(t, stats, "last_error_time")
}
