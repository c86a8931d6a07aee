package rss

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/transferradar/internal/entity"
	"github.com/deusflow/transferradar/internal/retry"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>"arsenal" - Google News</title>
<item>
  <title>Arsenal close in on new striker - BBC Sport</title>
  <link>https://example.com/a</link>
  <pubDate>Fri, 01 Aug 2025 10:00:00 GMT</pubDate>
  <description>&lt;a href="https://example.com/a"&gt;Arsenal close in on new striker&lt;/a&gt;&amp;nbsp;&amp;nbsp;&lt;font color="#6f6f6f"&gt;BBC Sport&lt;/font&gt;</description>
</item>
<item>
  <title>Saka signs new deal</title>
  <link>https://example.com/b</link>
</item>
</channel>
</rss>`

func fastRetry() retry.RetryConfig {
	return retry.RetryConfig{MaxAttempts: 3, Delay: time.Millisecond}
}

func TestFetch_ParsesItems(t *testing.T) {
	var gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.UserAgent()
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, sampleFeed)
	}))
	defer srv.Close()

	g := NewGoogleNews(Options{FeedURL: srv.URL + "/rss?q=%s", UserAgent: "transferradar-test", Retry: fastRetry()})
	articles, err := g.Fetch(context.Background(), " Bukayo Saka ")
	require.NoError(t, err)

	assert.Equal(t, "Bukayo Saka", gotQuery)
	assert.Equal(t, "transferradar-test", gotUA)
	require.Len(t, articles, 2)

	assert.Equal(t, "Arsenal close in on new striker - BBC Sport", articles[0].Title)
	assert.Equal(t, "https://example.com/a", articles[0].Link)
	assert.Equal(t, "Arsenal close in on new striker BBC Sport", articles[0].Description)
	assert.Equal(t, time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC), articles[0].Published)

	assert.Empty(t, articles[1].Description)
	assert.True(t, articles[1].Published.IsZero())
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, sampleFeed)
	}))
	defer srv.Close()

	g := NewGoogleNews(Options{FeedURL: srv.URL + "?q=%s", Retry: fastRetry()})
	articles, err := g.Fetch(context.Background(), "arsenal")
	require.NoError(t, err)
	assert.Len(t, articles, 2)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestFetch_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	g := NewGoogleNews(Options{FeedURL: srv.URL + "?q=%s", Retry: fastRetry()})
	_, err := g.Fetch(context.Background(), "arsenal")

	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrUpstreamFetch))
	var up *entity.UpstreamError
	require.True(t, errors.As(err, &up))
	assert.Equal(t, "google news", up.Source)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestFetch_MalformedFeedIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not a feed")
	}))
	defer srv.Close()

	g := NewGoogleNews(Options{FeedURL: srv.URL + "?q=%s", Retry: retry.RetryConfig{MaxAttempts: 1}})
	_, err := g.Fetch(context.Background(), "arsenal")
	assert.ErrorIs(t, err, entity.ErrUpstreamFetch)
}

func TestFeedURL_Escapes(t *testing.T) {
	assert.Equal(t, "https://news.google.com/rss/search?q=Man+Utd+%26+M%C3%BCller", FeedURL(DefaultFeedURL, "Man Utd & Müller"))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "", PlainText("   "))
	assert.Equal(t, "Rice joins Arsenal", PlainText("<p>Rice <b>joins</b>\n Arsenal</p>"))
	assert.Equal(t, "Tom & Jerry", PlainText("Tom &amp; Jerry"))
}
