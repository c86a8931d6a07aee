// Package app answers transfer-mention queries. A Service holds the
// immutable alias tables and match engines built at startup; every query
// works on values local to that call.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/deusflow/transferradar/internal/alias"
	"github.com/deusflow/transferradar/internal/entity"
	"github.com/deusflow/transferradar/internal/extract"
	"github.com/deusflow/transferradar/internal/logger"
	"github.com/deusflow/transferradar/internal/matcher"
	"github.com/deusflow/transferradar/internal/mentions"
	"github.com/deusflow/transferradar/internal/metrics"
	"github.com/deusflow/transferradar/internal/news"
	"github.com/deusflow/transferradar/internal/stats"
)

const (
	maxAutocomplete = 10
	maxSuggestions  = 3
)

// ArticleSource returns the feed items for a search query.
type ArticleSource interface {
	Fetch(ctx context.Context, query string) ([]news.Article, error)
}

// StatsStore is the read side of the stats database.
type StatsStore interface {
	LookupPlayer(ctx context.Context, name string) (entity.PlayerRecord, bool, error)
	LookupClub(ctx context.Context, name string) (entity.ClubRecord, bool, error)
	Roster(ctx context.Context, club string) ([]entity.PlayerRecord, error)
	PlayerStats(ctx context.Context, name string) ([]stats.Stat, bool, error)
	ClubStats(ctx context.Context, name string) (entity.ClubRecord, []stats.Stat, bool, error)
}

type Service struct {
	tables      alias.Tables
	agg         *mentions.Aggregator
	source      ArticleSource
	store       StatsStore
	metrics     *metrics.Metrics
	windowHours int
	now         func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now for window filtering.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics records query counters into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New builds the match engines from tables once.
func New(tables alias.Tables, source ArticleSource, store StatsStore, windowHours int, opts ...Option) *Service {
	x := extract.New(matcher.New(tables.Players), matcher.New(tables.Clubs))
	s := &Service{
		tables:      tables,
		agg:         mentions.New(x),
		source:      source,
		store:       store,
		windowHours: windowHours,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	return s
}

// Metrics exposes the counters of this service.
func (s *Service) Metrics() *metrics.Metrics { return s.metrics }

// WindowHours is the default publish window.
func (s *Service) WindowHours() int { return s.windowHours }

// Resolve maps user input to a canonical name of typ.
func (s *Service) Resolve(input string, typ entity.Type) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", missing("name")
	}
	ix := s.tables.For(typ)
	if name, ok := ix.Resolve(input); ok {
		return name, nil
	}
	return "", &entity.NotFoundError{Input: input, Type: typ, Suggestions: ix.Suggest(input, maxSuggestions)}
}

// ClubRow is a player co-mentioned with the queried club. AtClub is true
// when the stats store lists the player at that club.
type ClubRow struct {
	mentions.Row
	CurrentClub string `json:"current_club"`
	Position    string `json:"position,omitempty"`
	AtClub      bool   `json:"at_club"`
}

type ClubResult struct {
	Club        string             `json:"club"`
	Info        *entity.ClubRecord `json:"info,omitempty"`
	WindowHours int                `json:"window_hours"`
	Articles    int                `json:"articles"`
	Players     []ClubRow          `json:"players"`
}

// Empty reports a valid result without co-mentions.
func (r *ClubResult) Empty() bool { return len(r.Players) == 0 }

// PlayerRow is a club co-mentioned with the queried player.
type PlayerRow struct {
	mentions.Row
	League  string `json:"league,omitempty"`
	Country string `json:"country,omitempty"`
}

type PlayerResult struct {
	Player      string               `json:"player"`
	Info        *entity.PlayerRecord `json:"info,omitempty"`
	WindowHours int                  `json:"window_hours"`
	Articles    int                  `json:"articles"`
	Clubs       []PlayerRow          `json:"clubs"`
}

func (r *PlayerResult) Empty() bool { return len(r.Clubs) == 0 }

// ClubMentions ranks the players mentioned alongside the club input
// resolves to. Unknown clubs fail before any fetch.
func (s *Service) ClubMentions(ctx context.Context, input string, windowHours int) (*ClubResult, error) {
	start := time.Now()
	defer func() { s.metrics.RecordQueryTime(time.Since(start)) }()
	s.metrics.IncrementQuery(entity.Club)

	club, err := s.resolve(input, entity.Club)
	if err != nil {
		return nil, err
	}
	window := s.window(windowHours)
	articles, err := s.recent(ctx, input, window)
	if err != nil {
		return nil, err
	}

	res := &ClubResult{Club: club, WindowHours: window, Articles: len(articles), Players: []ClubRow{}}
	if info, ok, err := s.store.LookupClub(ctx, club); err != nil {
		logger.Warn("club lookup failed", "club", club, "err", err)
	} else if ok {
		res.Info = &info
	}

	for _, row := range s.agg.ForClub(club, articles) {
		cr := ClubRow{Row: row}
		p, ok, err := s.store.LookupPlayer(ctx, row.Name)
		if err != nil {
			logger.Warn("player lookup failed", "player", row.Name, "err", err)
		}
		if ok {
			cr.CurrentClub = p.Club
			cr.Position = p.Position
			cr.AtClub = strings.EqualFold(p.Club, club)
		}
		res.Players = append(res.Players, cr)
	}

	logger.Info("club mentions", "club", club, "window_hours", window, "articles", len(articles), "players", len(res.Players))
	return res, nil
}

// PlayerMentions ranks the clubs mentioned alongside the player input
// resolves to, leaving out the player's current club.
func (s *Service) PlayerMentions(ctx context.Context, input string, windowHours int) (*PlayerResult, error) {
	start := time.Now()
	defer func() { s.metrics.RecordQueryTime(time.Since(start)) }()
	s.metrics.IncrementQuery(entity.Player)

	player, err := s.resolve(input, entity.Player)
	if err != nil {
		return nil, err
	}
	window := s.window(windowHours)
	articles, err := s.recent(ctx, input, window)
	if err != nil {
		return nil, err
	}

	res := &PlayerResult{Player: player, WindowHours: window, Articles: len(articles), Clubs: []PlayerRow{}}
	exclude := ""
	if info, ok, err := s.store.LookupPlayer(ctx, player); err != nil {
		logger.Warn("player lookup failed", "player", player, "err", err)
	} else if ok {
		res.Info = &info
		if info.Club != entity.Unknown {
			exclude = info.Club
		}
	}

	for _, row := range s.agg.ForPlayer(player, articles, exclude) {
		pr := PlayerRow{Row: row}
		c, ok, err := s.store.LookupClub(ctx, row.Name)
		if err != nil {
			logger.Warn("club lookup failed", "club", row.Name, "err", err)
		}
		if ok {
			pr.League = c.League
			pr.Country = c.Country
		}
		res.Clubs = append(res.Clubs, pr)
	}

	logger.Info("player mentions", "player", player, "window_hours", window, "articles", len(articles), "clubs", len(res.Clubs))
	return res, nil
}

// SearchResult carries exactly one of Club or Player.
type SearchResult struct {
	Type   string        `json:"type"`
	Club   *ClubResult   `json:"club,omitempty"`
	Player *PlayerResult `json:"player,omitempty"`
}

// Search runs a club query for typ Club and falls back to a player query
// when the club does not resolve. A player query never falls back.
func (s *Service) Search(ctx context.Context, input string, typ entity.Type, windowHours int) (*SearchResult, error) {
	if typ == entity.Club {
		res, err := s.ClubMentions(ctx, input, windowHours)
		if err == nil {
			return &SearchResult{Type: entity.Club.String(), Club: res}, nil
		}
		if !errors.Is(err, entity.ErrNotFound) {
			return nil, err
		}
		if _, perr := s.Resolve(input, entity.Player); perr != nil {
			return nil, err
		}
	}
	res, err := s.PlayerMentions(ctx, input, windowHours)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Type: entity.Player.String(), Player: res}, nil
}

type LinkResult struct {
	Player      string         `json:"player"`
	Club        string         `json:"club"`
	WindowHours int            `json:"window_hours"`
	Articles    []news.Article `json:"articles"`
}

// TransferLink lists the recent articles naming both the player and the
// club, searching for both names together.
func (s *Service) TransferLink(ctx context.Context, playerInput, clubInput string, windowHours int) (*LinkResult, error) {
	s.metrics.IncrementLinkQueries()

	player, err := s.resolve(playerInput, entity.Player)
	if err != nil {
		return nil, err
	}
	club, err := s.resolve(clubInput, entity.Club)
	if err != nil {
		return nil, err
	}
	window := s.window(windowHours)
	query := strings.TrimSpace(playerInput) + " " + strings.TrimSpace(clubInput)
	articles, err := s.recent(ctx, query, window)
	if err != nil {
		return nil, err
	}
	return &LinkResult{
		Player:      player,
		Club:        club,
		WindowHours: window,
		Articles:    s.agg.Linked(player, club, articles),
	}, nil
}

// Autocomplete returns up to ten canonical names of either type containing
// query, sorted.
func (s *Service) Autocomplete(query string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, ix := range []*alias.Index{s.tables.Players, s.tables.Clubs} {
		for _, name := range ix.Complete(query) {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	sort.Strings(out)
	if len(out) > maxAutocomplete {
		out = out[:maxAutocomplete]
	}
	return out
}

type ClubProfile struct {
	Name   string                `json:"name"`
	Info   *entity.ClubRecord    `json:"info,omitempty"`
	Roster []entity.PlayerRecord `json:"roster"`
	Stats  []stats.Stat          `json:"stats"`
}

// ClubStats returns roster and stats for a club name as typed; the stats
// row is matched loosely, the roster exactly.
func (s *Service) ClubStats(ctx context.Context, name string) (*ClubProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, missing("name")
	}
	roster, err := s.store.Roster(ctx, name)
	if err != nil {
		return nil, err
	}
	p := &ClubProfile{Name: name, Roster: roster, Stats: []stats.Stat{}}
	info, st, ok, err := s.store.ClubStats(ctx, name)
	if err != nil {
		return nil, err
	}
	if ok {
		p.Info = &info
		p.Stats = st
	}
	return p, nil
}

type PlayerProfile struct {
	Name  string               `json:"name"`
	Info  *entity.PlayerRecord `json:"info,omitempty"`
	Stats []stats.Stat         `json:"stats"`
}

// PlayerStats resolves the player first, then reads the stats row.
func (s *Service) PlayerStats(ctx context.Context, input string) (*PlayerProfile, error) {
	player, err := s.resolve(input, entity.Player)
	if err != nil {
		return nil, err
	}
	p := &PlayerProfile{Name: player, Stats: []stats.Stat{}}
	if info, ok, err := s.store.LookupPlayer(ctx, player); err != nil {
		return nil, err
	} else if ok {
		p.Info = &info
	}
	st, ok, err := s.store.PlayerStats(ctx, player)
	if err != nil {
		return nil, err
	}
	if ok {
		p.Stats = st
	}
	return p, nil
}

func (s *Service) resolve(input string, typ entity.Type) (string, error) {
	name, err := s.Resolve(input, typ)
	if errors.Is(err, entity.ErrNotFound) {
		s.metrics.IncrementNotFound()
	}
	return name, err
}

func (s *Service) window(hours int) int {
	if hours > 0 {
		return hours
	}
	return s.windowHours
}

// recent fetches query and keeps the articles inside the window.
func (s *Service) recent(ctx context.Context, query string, windowHours int) ([]news.Article, error) {
	articles, err := s.source.Fetch(ctx, strings.TrimSpace(query))
	if err != nil {
		s.metrics.RecordUpstreamFailure(err)
		var up *entity.UpstreamError
		if !errors.As(err, &up) {
			err = &entity.UpstreamError{Source: "articles", Err: err}
		}
		return nil, err
	}
	recent := news.FilterRecent(articles, s.now(), windowHours)
	s.metrics.AddArticlesScanned(len(recent))
	return recent, nil
}

func missing(param string) error {
	return fmt.Errorf("%w: missing %s", entity.ErrInvalidInput, param)
}
