package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/transferradar/internal/app"
	"github.com/deusflow/transferradar/internal/entity"
	"github.com/deusflow/transferradar/internal/mentions"
	"github.com/deusflow/transferradar/internal/news"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	players := "CREATE TABLE `player_stats` (`Rk` TEXT, `Player` TEXT, `Nation` TEXT, `Pos` TEXT, `Squad` TEXT, `Age` TEXT, `Born` TEXT);\n" +
		"INSERT INTO player_stats VALUES ('1','Bruno Fernandes','pt POR','MF','Manchester Utd','30','1994');\n" +
		"INSERT INTO player_stats VALUES ('2','Kevin De Bruyne','be BEL','MF','Napoli','34','1991');\n"
	teams := "CREATE TABLE `team_stats` (`League` TEXT, `Country` TEXT, `Squad` TEXT);\n" +
		"INSERT INTO team_stats VALUES ('Premier League','ENG','Manchester Utd');\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "players.sql"), []byte(players), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "teams.sql"), []byte(teams), 0o644))

	cfg := "data:\n" +
		"  player_stats: " + filepath.Join(dir, "players.sql") + "\n" +
		"  team_stats: " + filepath.Join(dir, "teams.sql") + "\n"
	path := filepath.Join(dir, "transferradar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "transferradar v"+Version+"\n", out)
}

func TestConfigShow(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, "config", "show", "--log-level", "warn")
	require.NoError(t, err)
	assert.Contains(t, out, "log_level: warn")
	assert.Contains(t, out, "window_hours: 48")
	assert.Contains(t, out, "news.google.com/rss/search")
}

func TestConfigShow_InvalidConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRANSFERRADAR_NEWS_WINDOW_HOURS", "0")

	_, err := run(t, "config", "show")
	assert.ErrorContains(t, err, "window_hours")
}

func TestResolve(t *testing.T) {
	cfg := writeFixture(t)

	out, err := run(t, "--config", cfg, "resolve", "Manchester", "United")
	require.NoError(t, err)
	assert.Equal(t, "Manchester Utd\n", out)

	out, err = run(t, "--config", cfg, "resolve", "--type", "player", "kevin de bruyne")
	require.NoError(t, err)
	assert.Equal(t, "Kevin De Bruyne\n", out)

	_, err = run(t, "--config", cfg, "resolve", "--type", "player", "Bruno Fernandez")
	require.ErrorIs(t, err, entity.ErrNotFound)
	assert.Contains(t, err.Error(), "Bruno Fernandes")

	_, err = run(t, "--config", cfg, "resolve", "--type", "coach", "x")
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestRenderClub(t *testing.T) {
	var buf bytes.Buffer
	renderClub(&buf, &app.ClubResult{
		Club:        "Arsenal",
		Info:        &entity.ClubRecord{Name: "Arsenal", League: "Premier League", Country: "ENG"},
		WindowHours: 48,
		Articles:    3,
		Players: []app.ClubRow{
			{Row: mentions.Row{Name: "Bukayo Saka", Count: 2}, CurrentClub: "Arsenal", AtClub: true},
			{Row: mentions.Row{Name: "Alexander Isak", Count: 1}},
		},
	})
	out := buf.String()

	assert.Contains(t, out, "Arsenal: players mentioned in the last 48h (3 articles)")
	assert.Contains(t, out, "League: Premier League (ENG)")
	assert.Contains(t, out, "Bukayo Saka")
	assert.Contains(t, out, "outgoing")
	assert.Contains(t, out, "incoming")
	assert.Less(t, strings.Index(out, "Bukayo Saka"), strings.Index(out, "Alexander Isak"))
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	renderPlayer(&buf, &app.PlayerResult{Player: "Declan Rice", WindowHours: 24, Clubs: []app.PlayerRow{}})
	assert.Contains(t, buf.String(), "No recent mentions.")

	buf.Reset()
	renderLinks(&buf, &app.LinkResult{
		Player: "Declan Rice", Club: "Arsenal", WindowHours: 48,
		Articles: []news.Article{{Title: "Rice at Arsenal", Link: "https://example.com/x", Published: time.Date(2025, 8, 1, 9, 30, 0, 0, time.UTC)}},
	})
	assert.Contains(t, buf.String(), "Declan Rice x Arsenal: 1 articles in the last 48h")
	assert.Contains(t, buf.String(), "2025-08-01 09:30")
}
