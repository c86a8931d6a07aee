// Package extract pulls player and club mentions out of a single article.
package extract

import (
	"github.com/deusflow/transferradar/internal/matcher"
	"github.com/deusflow/transferradar/internal/news"
)

// Mentions are the canonical names found in one article, split by type.
type Mentions struct {
	Players map[string]struct{}
	Clubs   map[string]struct{}
}

// HasPlayer reports whether name was found among the players.
func (m Mentions) HasPlayer(name string) bool {
	_, ok := m.Players[name]
	return ok
}

// HasClub reports whether name was found among the clubs.
func (m Mentions) HasClub(name string) bool {
	_, ok := m.Clubs[name]
	return ok
}

// Extractor applies one engine per entity type. It holds no per-article state.
type Extractor struct {
	players *matcher.Engine
	clubs   *matcher.Engine
}

func New(players, clubs *matcher.Engine) *Extractor {
	return &Extractor{players: players, clubs: clubs}
}

// Extract scans title and description joined by a space.
func (x *Extractor) Extract(a news.Article) Mentions {
	text := a.Title + " " + a.Description
	return Mentions{
		Players: x.players.Scan(text),
		Clubs:   x.clubs.Scan(text),
	}
}
