// Package rss fetches article batches from the Google News search feed.
package rss

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/deusflow/transferradar/internal/entity"
	"github.com/deusflow/transferradar/internal/logger"
	"github.com/deusflow/transferradar/internal/news"
	"github.com/deusflow/transferradar/internal/ratelimit"
	"github.com/deusflow/transferradar/internal/retry"
)

// DefaultFeedURL takes the escaped query in place of %s.
const DefaultFeedURL = "https://news.google.com/rss/search?q=%s"

const sourceName = "google news"

type Options struct {
	FeedURL   string
	UserAgent string
	Timeout   time.Duration
	Retry     retry.RetryConfig
	Limiter   *ratelimit.Limiter
	Client    *http.Client
}

// GoogleNews is safe for concurrent use.
type GoogleNews struct {
	feedURL   string
	userAgent string
	timeout   time.Duration
	retry     retry.RetryConfig
	limiter   *ratelimit.Limiter
	client    *http.Client
}

func NewGoogleNews(opts Options) *GoogleNews {
	if opts.FeedURL == "" {
		opts.FeedURL = DefaultFeedURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Retry.MaxAttempts < 1 {
		opts.Retry = retry.RetryConfig{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true}
	}
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	return &GoogleNews{
		feedURL:   opts.FeedURL,
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		retry:     opts.Retry,
		limiter:   opts.Limiter,
		client:    opts.Client,
	}
}

// FeedURL fills the template with the query-escaped search terms.
func FeedURL(template, query string) string {
	return fmt.Sprintf(template, url.QueryEscape(strings.TrimSpace(query)))
}

// Fetch returns every item of the search feed for query, in feed order.
// Failures come back as *entity.UpstreamError.
func (g *GoogleNews) Fetch(ctx context.Context, query string) ([]news.Article, error) {
	feedURL := FeedURL(g.feedURL, query)

	var feed *gofeed.Feed
	err := retry.WithRetry(ctx, g.retry, func() error {
		if err := g.limiter.Wait(ctx); err != nil {
			return retry.Permanent(err)
		}
		f, err := g.parse(ctx, feedURL)
		if err != nil {
			logger.Warn("feed request failed", "query", query, "err", err)
			var httpErr gofeed.HTTPError
			if errors.As(err, &httpErr) && httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 &&
				httpErr.StatusCode != http.StatusTooManyRequests {
				return retry.Permanent(err)
			}
			return err
		}
		feed = f
		return nil
	})
	if err != nil {
		return nil, &entity.UpstreamError{Source: sourceName, Err: err}
	}

	articles := make([]news.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		articles = append(articles, toArticle(item))
	}
	logger.Debug("feed loaded", "query", query, "articles", len(articles))
	return articles, nil
}

func (g *GoogleNews) parse(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	parser := gofeed.NewParser()
	parser.Client = g.client
	if g.userAgent != "" {
		parser.UserAgent = g.userAgent
	}
	return parser.ParseURLWithContext(feedURL, ctx)
}

func toArticle(item *gofeed.Item) news.Article {
	a := news.Article{
		Title:       strings.TrimSpace(item.Title),
		Link:        strings.TrimSpace(item.Link),
		Description: PlainText(item.Description),
	}
	switch {
	case item.PublishedParsed != nil:
		a.Published = item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		a.Published = item.UpdatedParsed.UTC()
	}
	return a
}

// PlainText strips markup and entities from a feed description and
// collapses whitespace.
func PlainText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
