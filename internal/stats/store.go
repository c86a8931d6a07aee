// Package stats serves player and club records imported from the fbref
// SQL dumps into an embedded SQLite database.
package stats

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/deusflow/transferradar/internal/entity"
	"github.com/deusflow/transferradar/internal/logger"
	"github.com/deusflow/transferradar/internal/normalize"
)

// Player dump columns.
const (
	colPlayerName        = 1
	colPlayerNationality = 2
	colPlayerPosition    = 3
	colPlayerClub        = 4
	colPlayerBorn        = 6
	minPlayerValues      = 6
)

// Team dump columns.
const (
	colTeamLeague  = 0
	colTeamCountry = 1
	colTeamName    = 2
	minTeamValues  = 3
)

// identityColumns are left out of player stat listings.
var identityColumns = map[string]bool{
	"Rk": true, "Player": true, "Nation": true, "Pos": true,
	"Squad": true, "Born": true, "Matches": true,
}

// Stat is one column of a stats row, in dump column order.
type Stat struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Store is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite database at dsn (":memory:" works) and creates
// the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps :memory: databases shared and serialises writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		name_lower TEXT NOT NULL,
		nationality TEXT NOT NULL,
		position TEXT NOT NULL,
		club TEXT NOT NULL,
		club_lower TEXT NOT NULL,
		born TEXT NOT NULL,
		stats TEXT NOT NULL DEFAULT '[]'
	);

	CREATE INDEX IF NOT EXISTS idx_players_name_lower ON players(name_lower);
	CREATE INDEX IF NOT EXISTS idx_players_club_lower ON players(club_lower);

	CREATE TABLE IF NOT EXISTS clubs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		club_key TEXT NOT NULL,
		league TEXT NOT NULL,
		country TEXT NOT NULL,
		stats TEXT NOT NULL DEFAULT '[]'
	);

	CREATE INDEX IF NOT EXISTS idx_clubs_key ON clubs(club_key);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ClubKey folds a club name for lookups: lowercase without diacritics,
// " fc" and " afc" dropped, dots and commas removed, hyphens as spaces.
func ClubKey(name string) string {
	k := normalize.Key(name)
	k = strings.ReplaceAll(k, " fc", "")
	k = strings.ReplaceAll(k, " afc", "")
	k = strings.ReplaceAll(k, ".", "")
	k = strings.ReplaceAll(k, ",", "")
	k = strings.ReplaceAll(k, "-", " ")
	return strings.TrimSpace(k)
}

func orUnknown(values []string, i int) string {
	if i < len(values) && values[i] != "" {
		return values[i]
	}
	return entity.Unknown
}

// rowStats pairs values with columns. Rows whose width does not match the
// header get no stats.
func rowStats(columns, values []string, skip map[string]bool) []Stat {
	out := []Stat{}
	if len(columns) == 0 || len(columns) != len(values) {
		return out
	}
	for i, key := range columns {
		if skip[key] {
			continue
		}
		out = append(out, Stat{Key: key, Value: values[i]})
	}
	return out
}

// ImportPlayers replaces the players table with the rows of d. Rows with
// fewer than six values or without a name are skipped.
func (s *Store) ImportPlayers(ctx context.Context, d *Dump) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM players`); err != nil {
		return 0, fmt.Errorf("clear players: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO players (name, name_lower, nationality, position, club, club_lower, born, stats)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for _, values := range d.Rows {
		if len(values) < minPlayerValues || values[colPlayerName] == "" {
			continue
		}
		blob, err := json.Marshal(rowStats(d.Columns, values, identityColumns))
		if err != nil {
			return 0, err
		}
		name := values[colPlayerName]
		club := orUnknown(values, colPlayerClub)
		if _, err := stmt.ExecContext(ctx, name, strings.ToLower(name),
			orUnknown(values, colPlayerNationality), orUnknown(values, colPlayerPosition),
			club, strings.ToLower(club), orUnknown(values, colPlayerBorn), string(blob)); err != nil {
			return 0, fmt.Errorf("insert player %q: %w", name, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// ImportClubs replaces the clubs table with the rows of d.
func (s *Store) ImportClubs(ctx context.Context, d *Dump) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM clubs`); err != nil {
		return 0, fmt.Errorf("clear clubs: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO clubs (name, club_key, league, country, stats) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for _, values := range d.Rows {
		if len(values) < minTeamValues || values[colTeamName] == "" {
			continue
		}
		blob, err := json.Marshal(rowStats(d.Columns, values, nil))
		if err != nil {
			return 0, err
		}
		name := values[colTeamName]
		if _, err := stmt.ExecContext(ctx, name, ClubKey(name),
			orUnknown(values, colTeamLeague), orUnknown(values, colTeamCountry), string(blob)); err != nil {
			return 0, fmt.Errorf("insert club %q: %w", name, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// ImportFiles loads both dumps. The team dump is optional: an empty path
// leaves the clubs table empty.
func (s *Store) ImportFiles(ctx context.Context, playerPath, teamPath string) error {
	pd, err := ReadDumpFile(playerPath)
	if err != nil {
		return fmt.Errorf("player stats: %w", err)
	}
	players, err := s.ImportPlayers(ctx, pd)
	if err != nil {
		return fmt.Errorf("player stats: %w", err)
	}

	clubs := 0
	if teamPath != "" {
		td, err := ReadDumpFile(teamPath)
		if err != nil {
			return fmt.Errorf("team stats: %w", err)
		}
		if clubs, err = s.ImportClubs(ctx, td); err != nil {
			return fmt.Errorf("team stats: %w", err)
		}
	}

	logger.Info("stats imported", "players", players, "clubs", clubs)
	return nil
}

const playerColumns = `name, nationality, position, club, born`

func scanPlayers(rows *sql.Rows) ([]entity.PlayerRecord, error) {
	defer rows.Close()
	out := []entity.PlayerRecord{}
	for rows.Next() {
		var p entity.PlayerRecord
		if err := rows.Scan(&p.Name, &p.Nationality, &p.Position, &p.Club, &p.Born); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Players returns every player in dump order.
func (s *Store) Players(ctx context.Context) ([]entity.PlayerRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+playerColumns+` FROM players ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return scanPlayers(rows)
}

// LookupPlayer finds the first player whose name equals name ignoring case.
func (s *Store) LookupPlayer(ctx context.Context, name string) (entity.PlayerRecord, bool, error) {
	var p entity.PlayerRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE name_lower = ? ORDER BY id LIMIT 1`,
		strings.ToLower(strings.TrimSpace(name)),
	).Scan(&p.Name, &p.Nationality, &p.Position, &p.Club, &p.Born)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.PlayerRecord{}, false, nil
	}
	if err != nil {
		return entity.PlayerRecord{}, false, err
	}
	return p, true, nil
}

// Roster lists the players of club in dump order.
func (s *Store) Roster(ctx context.Context, club string) ([]entity.PlayerRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE club_lower = ? ORDER BY id`,
		strings.ToLower(strings.TrimSpace(club)))
	if err != nil {
		return nil, err
	}
	return scanPlayers(rows)
}

// LookupClub matches on ClubKey: an exact key first, then the first club
// whose key contains, or is contained in, the query key.
func (s *Store) LookupClub(ctx context.Context, name string) (entity.ClubRecord, bool, error) {
	c, _, ok, err := s.findClub(ctx, name)
	return c, ok, err
}

func (s *Store) findClub(ctx context.Context, name string) (entity.ClubRecord, string, bool, error) {
	key := ClubKey(name)
	if key == "" {
		return entity.ClubRecord{}, "", false, nil
	}

	queries := []string{
		`SELECT name, league, country, stats FROM clubs WHERE club_key = ? ORDER BY id LIMIT 1`,
		`SELECT name, league, country, stats FROM clubs
		 WHERE club_key <> '' AND (instr(club_key, ?1) > 0 OR instr(?1, club_key) > 0)
		 ORDER BY id LIMIT 1`,
	}
	for _, q := range queries {
		var (
			c    entity.ClubRecord
			blob string
		)
		err := s.db.QueryRowContext(ctx, q, key).Scan(&c.Name, &c.League, &c.Country, &blob)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return entity.ClubRecord{}, "", false, err
		}
		return c, blob, true, nil
	}
	return entity.ClubRecord{}, "", false, nil
}

// PlayerStats returns the non-identity columns of the first row for name.
func (s *Store) PlayerStats(ctx context.Context, name string) ([]Stat, bool, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT stats FROM players WHERE name_lower = ? ORDER BY id LIMIT 1`,
		strings.ToLower(strings.TrimSpace(name))).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	out, err := decodeStats(blob)
	return out, err == nil, err
}

// ClubStats returns every column of the club row LookupClub would pick.
func (s *Store) ClubStats(ctx context.Context, name string) (entity.ClubRecord, []Stat, bool, error) {
	c, blob, ok, err := s.findClub(ctx, name)
	if err != nil || !ok {
		return entity.ClubRecord{}, nil, false, err
	}
	out, err := decodeStats(blob)
	if err != nil {
		return entity.ClubRecord{}, nil, false, err
	}
	return c, out, true, nil
}

func decodeStats(blob string) ([]Stat, error) {
	var out []Stat
	if err := json.Unmarshal([]byte(blob), &out); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return out, nil
}
