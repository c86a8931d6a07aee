// Package alias maps surface spellings of players and clubs to canonical
// names. An Index is built once and never mutated afterwards.
package alias

import (
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/deusflow/transferradar/internal/entity"
	"github.com/deusflow/transferradar/internal/normalize"
)

// Entry is one alias key with the canonical name it resolves to.
type Entry struct {
	Key       string
	Canonical string
}

// Index is an immutable normalized-alias -> canonical-names table. The first
// registered canonical name of a key is the authoritative one.
type Index struct {
	keys  []string
	names map[string][]string
}

// Resolve returns the canonical name for user input.
func (ix *Index) Resolve(input string) (string, bool) {
	if ix == nil {
		return "", false
	}
	names, ok := ix.names[normalize.Key(strings.TrimSpace(input))]
	if !ok || len(names) == 0 {
		return "", false
	}
	return names[0], true
}

// Len is the number of alias keys, synthesized ones included.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.keys)
}

// Entries lists every key with its authoritative canonical name in
// registration order.
func (ix *Index) Entries() []Entry {
	if ix == nil {
		return nil
	}
	out := make([]Entry, 0, len(ix.keys))
	for _, k := range ix.keys {
		out = append(out, Entry{Key: k, Canonical: ix.names[k][0]})
	}
	return out
}

// Names returns the distinct display names bound to any key, in first-seen order.
func (ix *Index) Names() []string {
	if ix == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, k := range ix.keys {
		for _, n := range ix.names[k] {
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}

// Complete returns names containing query case-insensitively, sorted.
func (ix *Index) Complete(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []string
	for _, n := range ix.Names() {
		if strings.Contains(strings.ToLower(n), q) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

// suggestThreshold is the minimum Jaro-Winkler similarity for a suggestion.
const suggestThreshold = 0.85

// Suggest returns up to limit canonical names whose keys look like input.
func (ix *Index) Suggest(input string, limit int) []string {
	key := normalize.Key(strings.TrimSpace(input))
	if key == "" || limit <= 0 || ix == nil {
		return nil
	}

	best := make(map[string]float64)
	for _, k := range ix.keys {
		score := matchr.JaroWinkler(key, k, false)
		if score < suggestThreshold {
			continue
		}
		canon := ix.names[k][0]
		if score > best[canon] {
			best[canon] = score
		}
	}

	out := make([]string, 0, len(best))
	for name := range best {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool {
		if best[out[i]] != best[out[j]] {
			return best[out[i]] > best[out[j]]
		}
		return out[i] < out[j]
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Builder accumulates aliases before freezing them into an Index.
type Builder struct {
	keys  []string
	names map[string][]string
}

func NewBuilder() *Builder {
	return &Builder{names: make(map[string][]string)}
}

// Add registers name under its normalized key. Blank names are ignored.
func (b *Builder) Add(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	key := normalize.Key(name)
	names, exists := b.names[key]
	if !exists {
		b.keys = append(b.keys, key)
	}
	for _, n := range names {
		if n == name {
			return
		}
	}
	b.names[key] = append(names, name)
}

// Expand applies rewrite rules once over the keys registered so far. A
// synthesized key binds to the source key's canonical list unless it is
// already present; output of this pass is not rewritten again.
func (b *Builder) Expand(rules []Rule) {
	existing := len(b.keys)
	for i := 0; i < existing; i++ {
		src := b.keys[i]
		for _, r := range rules {
			if r.From == "" || !strings.Contains(src, r.From) {
				continue
			}
			alt := strings.ReplaceAll(src, r.From, r.To)
			if _, taken := b.names[alt]; taken {
				continue
			}
			b.keys = append(b.keys, alt)
			b.names[alt] = b.names[src]
		}
	}
}

// Build freezes the builder. The builder must not be used afterwards.
func (b *Builder) Build() *Index {
	ix := &Index{keys: b.keys, names: b.names}
	b.keys, b.names = nil, nil
	return ix
}

// Source is one row of the entity table aliases are built from.
type Source struct {
	Name string
	Type entity.Type
}

// Tables holds the per-type indexes.
type Tables struct {
	Players *Index
	Clubs   *Index
}

// For returns the index of the given type.
func (t Tables) For(typ entity.Type) *Index {
	if typ == entity.Player {
		return t.Players
	}
	return t.Clubs
}

// BuildTables registers every source in order and expands club aliases with
// clubRules. Player aliases are never rewritten.
func BuildTables(sources []Source, clubRules []Rule) Tables {
	players, clubs := NewBuilder(), NewBuilder()
	for _, s := range sources {
		switch s.Type {
		case entity.Player:
			players.Add(s.Name)
		case entity.Club:
			if s.Name == entity.Unknown {
				continue
			}
			clubs.Add(s.Name)
		}
	}
	clubs.Expand(clubRules)
	return Tables{Players: players.Build(), Clubs: clubs.Build()}
}
