// Package matcher finds alias occurrences in free text with a rune-level
// Aho-Corasick automaton. An Engine is immutable once built and can be
// shared by any number of goroutines.
package matcher

import (
	"unicode"

	"github.com/deusflow/transferradar/internal/alias"
	"github.com/deusflow/transferradar/internal/normalize"
)

// ShortAliasLen is the longest alias that must sit on word boundaries.
const ShortAliasLen = 3

const noPattern = -1

type pattern struct {
	key       string
	canonical string
	length    int // in runes
}

type node struct {
	next    map[rune]int32
	fail    int32
	dict    int32 // nearest node on the fail chain that ends a pattern, 0 if none
	pattern int32
}

// Engine is a compiled set of alias keys.
type Engine struct {
	nodes    []node
	patterns []pattern
}

// Match is one accepted alias occurrence. Offsets are rune positions in the
// normalized text, End exclusive.
type Match struct {
	Alias     string
	Canonical string
	Start     int
	End       int
}

// New compiles every key of ix.
func New(ix *alias.Index) *Engine {
	return FromEntries(ix.Entries())
}

// FromEntries compiles the given keys. Keys are expected to be normalized;
// empty keys are skipped and a repeated key keeps its first canonical name.
func FromEntries(entries []alias.Entry) *Engine {
	e := &Engine{nodes: []node{newNode()}}
	for _, en := range entries {
		if en.Key == "" {
			continue
		}
		e.insert(en.Key, en.Canonical)
	}
	e.link()
	return e
}

func newNode() node {
	return node{next: make(map[rune]int32), pattern: noPattern}
}

func (e *Engine) insert(key, canonical string) {
	cur := int32(0)
	length := 0
	for _, r := range key {
		nxt, ok := e.nodes[cur].next[r]
		if !ok {
			nxt = int32(len(e.nodes))
			e.nodes = append(e.nodes, newNode())
			e.nodes[cur].next[r] = nxt
		}
		cur = nxt
		length++
	}
	if e.nodes[cur].pattern != noPattern {
		return
	}
	e.nodes[cur].pattern = int32(len(e.patterns))
	e.patterns = append(e.patterns, pattern{key: key, canonical: canonical, length: length})
}

// link computes failure and dictionary-suffix links breadth first.
func (e *Engine) link() {
	queue := make([]int32, 0, len(e.nodes))
	for _, child := range e.nodes[0].next {
		e.nodes[child].fail = 0
		queue = append(queue, child)
	}

	for h := 0; h < len(queue); h++ {
		u := queue[h]
		for r, v := range e.nodes[u].next {
			queue = append(queue, v)

			f := e.nodes[u].fail
			for f != 0 {
				if _, ok := e.nodes[f].next[r]; ok {
					break
				}
				f = e.nodes[f].fail
			}
			if to, ok := e.nodes[f].next[r]; ok {
				e.nodes[v].fail = to
			} else {
				e.nodes[v].fail = 0
			}

			fv := e.nodes[v].fail
			if e.nodes[fv].pattern != noPattern {
				e.nodes[v].dict = fv
			} else {
				e.nodes[v].dict = e.nodes[fv].dict
			}
		}
	}
}

// Patterns is the number of distinct alias keys compiled in.
func (e *Engine) Patterns() int { return len(e.patterns) }

// Scan normalizes text and returns the canonical names whose aliases occur
// in it. Repeated mentions collapse into one member.
func (e *Engine) Scan(text string) map[string]struct{} {
	found := make(map[string]struct{})
	e.walk(text, func(m Match) {
		found[m.Canonical] = struct{}{}
	})
	return found
}

// Matches returns every accepted occurrence in text order of match end;
// for a shared end the longer alias comes first.
func (e *Engine) Matches(text string) []Match {
	var out []Match
	e.walk(text, func(m Match) {
		out = append(out, m)
	})
	return out
}

func (e *Engine) walk(text string, emit func(Match)) {
	if e == nil || len(e.patterns) == 0 || text == "" {
		return
	}
	rs := []rune(normalize.Key(text))

	cur := int32(0)
	for i, r := range rs {
		for cur != 0 {
			if _, ok := e.nodes[cur].next[r]; ok {
				break
			}
			cur = e.nodes[cur].fail
		}
		if to, ok := e.nodes[cur].next[r]; ok {
			cur = to
		}

		for n := cur; n != 0; n = e.nodes[n].dict {
			pid := e.nodes[n].pattern
			if pid == noPattern {
				continue
			}
			p := e.patterns[pid]
			start, end := i+1-p.length, i+1
			if !onBoundary(rs, start, end, p.length) {
				continue
			}
			emit(Match{Alias: p.key, Canonical: p.canonical, Start: start, End: end})
		}
	}
}

// onBoundary accepts long aliases anywhere; short ones only when neither
// neighbour is a letter or digit.
func onBoundary(rs []rune, start, end, length int) bool {
	if length > ShortAliasLen {
		return true
	}
	if start > 0 && isAlnum(rs[start-1]) {
		return false
	}
	if end < len(rs) && isAlnum(rs[end]) {
		return false
	}
	return true
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}
