package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deusflow/transferradar/internal/alias"
	"github.com/deusflow/transferradar/internal/entity"
	"github.com/deusflow/transferradar/internal/matcher"
	"github.com/deusflow/transferradar/internal/news"
)

func newExtractor() *Extractor {
	tables := alias.BuildTables([]alias.Source{
		{Name: "Declan Rice", Type: entity.Player},
		{Name: "Arsenal", Type: entity.Club},
		{Name: "Bukayo Saka", Type: entity.Player},
		{Name: "Arsenal", Type: entity.Club},
	}, alias.DefaultClubRules)
	return New(matcher.New(tables.Players), matcher.New(tables.Clubs))
}

func TestExtract_TitleAndDescription(t *testing.T) {
	x := newExtractor()

	m := x.Extract(news.Article{Title: "Arsenal news", Description: "Saka? No - Bukayo Saka and Declan Rice"})

	assert.True(t, m.HasClub("Arsenal"))
	assert.True(t, m.HasPlayer("Bukayo Saka"))
	assert.True(t, m.HasPlayer("Declan Rice"))
	assert.Len(t, m.Players, 2)
	assert.False(t, m.HasPlayer("Arsenal"))
}

func TestExtract_JoinsWithSpace(t *testing.T) {
	x := newExtractor()

	m := x.Extract(news.Article{Title: "Declan", Description: "Rice"})
	assert.True(t, m.HasPlayer("Declan Rice"))

	m = x.Extract(news.Article{Title: "Arsen", Description: "al"})
	assert.False(t, m.HasClub("Arsenal"))
}

func TestExtract_MissingFields(t *testing.T) {
	x := newExtractor()

	m := x.Extract(news.Article{})
	assert.Empty(t, m.Players)
	assert.Empty(t, m.Clubs)

	m = x.Extract(news.Article{Description: "Arsenal"})
	assert.True(t, m.HasClub("Arsenal"))
}
