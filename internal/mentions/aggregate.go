// Package mentions counts co-mentions of opposite-type entities across a
// batch of articles. All state is local to a single call.
package mentions

import (
	"sort"

	"github.com/deusflow/transferradar/internal/extract"
	"github.com/deusflow/transferradar/internal/news"
)

// Row is one co-mentioned entity with the distinct articles backing it.
type Row struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Links []string `json:"links"`
}

// Aggregator runs the extractor over article batches.
type Aggregator struct {
	x *extract.Extractor
}

func New(x *extract.Extractor) *Aggregator {
	return &Aggregator{x: x}
}

// linkSet keeps links unique while remembering feed order.
type linkSet struct {
	seen  map[string]struct{}
	order []string
}

func (s *linkSet) add(link string) {
	if _, ok := s.seen[link]; ok {
		return
	}
	s.seen[link] = struct{}{}
	s.order = append(s.order, link)
}

type tally map[string]*linkSet

func (t tally) add(name, link string) {
	s, ok := t[name]
	if !ok {
		s = &linkSet{seen: map[string]struct{}{}}
		t[name] = s
	}
	s.add(link)
}

// ForClub counts, for every player, the distinct articles in which the
// player appears together with target.
func (a *Aggregator) ForClub(target string, articles []news.Article) []Row {
	t := tally{}
	for _, art := range articles {
		m := a.x.Extract(art)
		if !m.HasClub(target) {
			continue
		}
		for p := range m.Players {
			t.add(p, art.Link)
		}
	}
	return t.rank()
}

// ForPlayer counts, for every club other than excludeClub, the distinct
// articles in which the club appears together with target. An empty
// excludeClub excludes nothing.
func (a *Aggregator) ForPlayer(target string, articles []news.Article, excludeClub string) []Row {
	t := tally{}
	for _, art := range articles {
		m := a.x.Extract(art)
		if !m.HasPlayer(target) {
			continue
		}
		for c := range m.Clubs {
			if excludeClub != "" && c == excludeClub {
				continue
			}
			t.add(c, art.Link)
		}
	}
	return t.rank()
}

// Linked returns the articles mentioning both player and club, first
// occurrence of each link only, in input order.
func (a *Aggregator) Linked(player, club string, articles []news.Article) []news.Article {
	out := []news.Article{}
	for _, art := range news.DedupeByLink(articles) {
		m := a.x.Extract(art)
		if m.HasPlayer(player) && m.HasClub(club) {
			out = append(out, art)
		}
	}
	return out
}

// rank orders by count descending, then name ascending.
func (t tally) rank() []Row {
	rows := make([]Row, 0, len(t))
	for name, s := range t {
		rows = append(rows, Row{Name: name, Count: len(s.order), Links: s.order})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}
