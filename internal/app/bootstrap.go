package app

import (
	"context"
	"fmt"

	"github.com/deusflow/transferradar/internal/alias"
	"github.com/deusflow/transferradar/internal/config"
	"github.com/deusflow/transferradar/internal/entity"
	"github.com/deusflow/transferradar/internal/logger"
	"github.com/deusflow/transferradar/internal/metrics"
	"github.com/deusflow/transferradar/internal/ratelimit"
	"github.com/deusflow/transferradar/internal/retry"
	"github.com/deusflow/transferradar/internal/rss"
	"github.com/deusflow/transferradar/internal/stats"
)

// Sources lists every player name and every known club in dump order.
func Sources(players []entity.PlayerRecord) []alias.Source {
	out := make([]alias.Source, 0, 2*len(players))
	for _, p := range players {
		out = append(out, alias.Source{Name: p.Name, Type: entity.Player})
		if p.Club != "" && p.Club != entity.Unknown {
			out = append(out, alias.Source{Name: p.Club, Type: entity.Club})
		}
	}
	return out
}

// ClubRules reads path, or returns the built-in rules when path is empty.
func ClubRules(path string) ([]alias.Rule, error) {
	if path == "" {
		return alias.DefaultClubRules, nil
	}
	rules, err := alias.LoadRules(path)
	if err != nil {
		return nil, fmt.Errorf("alias rules: %w", err)
	}
	return rules, nil
}

// Open imports the stats dumps, builds the alias tables and wires the
// Google News source. The returned close func releases the database.
func Open(ctx context.Context, cfg *config.Config) (*Service, func() error, error) {
	store, err := stats.Open(cfg.Data.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := store.ImportFiles(ctx, cfg.Data.PlayerStats, cfg.Data.TeamStats); err != nil {
		store.Close()
		return nil, nil, err
	}

	players, err := store.Players(ctx)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("load players: %w", err)
	}
	rules, err := ClubRules(cfg.Data.AliasRules)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	tables := alias.BuildTables(Sources(players), rules)
	logger.Info("alias tables built",
		"player_aliases", tables.Players.Len(),
		"club_aliases", tables.Clubs.Len(),
		"rules", len(rules))

	source := rss.NewGoogleNews(rss.Options{
		FeedURL:   cfg.News.FeedURL,
		UserAgent: cfg.News.UserAgent,
		Timeout:   cfg.News.RequestTimeout,
		Retry: retry.RetryConfig{
			MaxAttempts: cfg.News.RetryAttempts,
			Delay:       cfg.News.RetryDelay,
			Backoff:     true,
		},
		Limiter: ratelimit.NewLimiter(cfg.News.RequestsPerSecond),
	})

	svc := New(tables, source, store, cfg.News.WindowHours, WithMetrics(metrics.New()))
	return svc, store.Close, nil
}
