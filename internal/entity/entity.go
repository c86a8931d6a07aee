// Package entity holds the shared football data model: entity kinds, the
// stats-store record shapes and the error taxonomy of the query path.
package entity

import (
	"fmt"
	"strings"
)

// Type distinguishes players from clubs. Canonical names are unique per type.
type Type int

const (
	Player Type = iota
	Club
)

func (t Type) String() string {
	switch t {
	case Player:
		return "player"
	case Club:
		return "club"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Opposite returns the type a query of t aggregates over.
func (t Type) Opposite() Type {
	if t == Club {
		return Player
	}
	return Club
}

// ParseType accepts the query-string spellings used by the API and CLI.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "player", "players":
		return Player, nil
	case "team", "club", "clubs", "teams", "":
		return Club, nil
	default:
		return Club, fmt.Errorf("%w: unknown entity type %q", ErrInvalidInput, s)
	}
}

// Entity is a canonical name together with its kind.
type Entity struct {
	Name string `json:"name"`
	Type Type   `json:"-"`
}

// Unknown fills absent stats-store fields.
const Unknown = "Unknown"

// PlayerRecord is the one shape every collaborator uses for player info.
type PlayerRecord struct {
	Name        string `json:"name"`
	Club        string `json:"club"`
	Position    string `json:"position"`
	Born        string `json:"born"`
	Nationality string `json:"nationality"`
}

// ClubRecord is the league metadata the stats store keeps per club.
type ClubRecord struct {
	Name    string `json:"name"`
	League  string `json:"league"`
	Country string `json:"country"`
}
