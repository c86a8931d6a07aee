// Package news defines the article shape handed from the article source to
// the mention pipeline, plus the publish-window and link de-duplication rules.
package news

import (
	"time"
)

// Article is one feed entry. Link is its identity.
type Article struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Description string    `json:"description,omitempty"`
	Published   time.Time `json:"published"`
}

// Cutoff is the exclusive lower bound of a trailing window ending at now.
func Cutoff(now time.Time, windowHours int) time.Time {
	return now.Add(-time.Duration(windowHours) * time.Hour)
}

// InWindow reports whether a was published strictly after now - windowHours.
// Articles without a publish time are never in a window.
func InWindow(a Article, now time.Time, windowHours int) bool {
	if a.Published.IsZero() {
		return false
	}
	return a.Published.After(Cutoff(now, windowHours))
}

// FilterRecent keeps the articles inside the window, preserving order.
func FilterRecent(items []Article, now time.Time, windowHours int) []Article {
	out := make([]Article, 0, len(items))
	for _, a := range items {
		if InWindow(a, now, windowHours) {
			out = append(out, a)
		}
	}
	return out
}

// DedupeByLink keeps the first article of every link, preserving order.
func DedupeByLink(items []Article) []Article {
	seenLinks := map[string]struct{}{}
	out := make([]Article, 0, len(items))
	for _, a := range items {
		if _, dup := seenLinks[a.Link]; dup {
			continue
		}
		seenLinks[a.Link] = struct{}{}
		out = append(out, a)
	}
	return out
}
