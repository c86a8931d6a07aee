package matcher

import (
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/transferradar/internal/alias"
	"github.com/deusflow/transferradar/internal/normalize"
)

func engineFor(names ...string) *Engine {
	b := alias.NewBuilder()
	for _, n := range names {
		b.Add(n)
	}
	return New(b.Build())
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestScan_ShortAliasNeedsBoundary(t *testing.T) {
	e := engineFor("PSG")

	assert.Empty(t, e.Scan("psgabc"))
	assert.Empty(t, e.Scan("abcpsg"))
	assert.Empty(t, e.Scan("1psg"))
	assert.Equal(t, []string{"PSG"}, keys(e.Scan("PSG sign new striker")))
	assert.Equal(t, []string{"PSG"}, keys(e.Scan("Striker joins PSG")))
	assert.Equal(t, []string{"PSG"}, keys(e.Scan("(PSG)")))
	assert.Equal(t, []string{"PSG"}, keys(e.Scan("psg")))
}

func TestScan_LongAliasContainment(t *testing.T) {
	e := engineFor("Arsenal")

	assert.Equal(t, []string{"Arsenal"}, keys(e.Scan("arsenalfc wins")))
	assert.Equal(t, []string{"Arsenal"}, keys(e.Scan("ARSENAL")))
}

func TestScan_DiacriticsInText(t *testing.T) {
	e := engineFor("Kylian Mbappe", "Thomas Müller")

	assert.Equal(t, []string{"Kylian Mbappe", "Thomas Müller"},
		keys(e.Scan("Kylian Mbappé and Thomas Muller shine")))
}

func TestScan_OverlappingAliases(t *testing.T) {
	b := alias.NewBuilder()
	b.Add("Manchester Utd")
	b.Add("Manchester City")
	b.Expand(alias.DefaultClubRules)
	e := New(b.Build())

	got := keys(e.Scan("Man City beat Manchester United in the derby"))
	assert.Equal(t, []string{"Manchester City", "Manchester Utd"}, got)
}

func TestScan_NestedPatternsAllReported(t *testing.T) {
	e := engineFor("Ben White", "White", "Ben")

	matches := e.Matches("ben white")
	require.Len(t, matches, 3)
	assert.Equal(t, Match{Alias: "ben", Canonical: "Ben", Start: 0, End: 3}, matches[0])
	assert.Equal(t, Match{Alias: "ben white", Canonical: "Ben White", Start: 0, End: 9}, matches[1])
	assert.Equal(t, Match{Alias: "white", Canonical: "White", Start: 4, End: 9}, matches[2])
}

func TestScan_EmptyInputs(t *testing.T) {
	assert.Empty(t, engineFor().Scan("Arsenal"))
	assert.Empty(t, engineFor("Arsenal").Scan(""))

	var nilEngine *Engine
	assert.Empty(t, nilEngine.Scan("Arsenal"))
}

func TestFromEntries_SkipsEmptyAndDuplicateKeys(t *testing.T) {
	e := FromEntries([]alias.Entry{
		{Key: "", Canonical: "Nobody"},
		{Key: "saka", Canonical: "Bukayo Saka"},
		{Key: "saka", Canonical: "Someone Else"},
	})

	assert.Equal(t, 1, e.Patterns())
	assert.Equal(t, []string{"Bukayo Saka"}, keys(e.Scan("Saka scores")))
}

// naiveScan is the scan-per-alias reference the automaton must agree with.
func naiveScan(entries []alias.Entry, text string) []string {
	rs := []rune(normalize.Key(text))
	found := map[string]struct{}{}
	for _, en := range entries {
		pr := []rune(en.Key)
		for i := 0; i+len(pr) <= len(rs); i++ {
			if string(rs[i:i+len(pr)]) != en.Key {
				continue
			}
			if onBoundary(rs, i, i+len(pr), len(pr)) {
				found[en.Canonical] = struct{}{}
			}
		}
	}
	return keys(found)
}

func TestScan_AgreesWithNaiveReference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []rune("abé c-")
	word := func(n int) string {
		var sb strings.Builder
		for i := 0; i < n; i++ {
			sb.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		return sb.String()
	}

	for round := 0; round < 200; round++ {
		b := alias.NewBuilder()
		for i := 0; i < 1+rng.Intn(8); i++ {
			b.Add(word(1 + rng.Intn(5)))
		}
		ix := b.Build()
		e := New(ix)
		text := word(rng.Intn(40))

		assert.Equal(t, naiveScan(ix.Entries(), text), keys(e.Scan(text)), "text %q", text)
	}
}
