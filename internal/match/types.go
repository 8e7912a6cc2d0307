package match

import (
	"fmt"
	"strings"
	"time"
)

// Status represents where a match is in its lifecycle.
type Status string

const (
	StatusPending  Status = "pending"
	StatusFinished Status = "finished"
)

// Kind distinguishes official tournament matches from informal group matches.
type Kind string

const (
	KindOfficial Kind = "official"
	KindGroup    Kind = "group"
)

// Scope partitions matches into independent queues.
type Scope struct {
	Kind       Kind   `json:"kind"`
	Tournament string `json:"tournament,omitempty"`
	Place      string `json:"place,omitempty"`
	Court      string `json:"court,omitempty"`
	Group      string `json:"group,omitempty"`
}

// CourtScope is the queue of one court of an official tournament.
func CourtScope(tournament, place, court string) Scope {
	return Scope{Kind: KindOfficial, Tournament: tournament, Place: place, Court: court}
}

// GroupScope is the queue of an informal player group.
func GroupScope(name string) Scope {
	return Scope{Kind: KindGroup, Group: name}
}

// Normalize returns a copy of s with surrounding whitespace removed from every key.
func (s Scope) Normalize() Scope {
	return Scope{
		Kind:       s.Kind,
		Tournament: strings.TrimSpace(s.Tournament),
		Place:      strings.TrimSpace(s.Place),
		Court:      strings.TrimSpace(s.Court),
		Group:      strings.TrimSpace(s.Group),
	}
}

// Validate checks that the scope carries the keys required by its kind.
// Keys are compared after trimming, see Normalize.
func (s Scope) Validate() error {
	s = s.Normalize()
	switch s.Kind {
	case KindOfficial:
		if s.Tournament == "" || s.Place == "" || s.Court == "" {
			return fmt.Errorf("%w: tournament, place and court are required", ErrValidation)
		}
		if s.Group != "" {
			return fmt.Errorf("%w: official matches have no group", ErrValidation)
		}
	case KindGroup:
		if s.Group == "" {
			return fmt.Errorf("%w: group name is required", ErrValidation)
		}
		if s.Tournament != "" || s.Place != "" || s.Court != "" {
			return fmt.Errorf("%w: group matches have no tournament, place or court", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown match kind %q", ErrValidation, s.Kind)
	}
	return nil
}

func (s Scope) String() string {
	if s.Kind == KindGroup {
		return "group/" + s.Group
	}
	return s.Tournament + "/" + s.Place + "/" + s.Court
}

// Tags are the descriptive options of an official match.
type Tags struct {
	RoundType string `json:"round_type"`
	Gender    string `json:"gender"`
	MatchType string `json:"match_type"`
}

// Match is one registered match.
type Match struct {
	ID        int64     `json:"id"`
	Scope     Scope     `json:"scope"`
	Tags      *Tags     `json:"tags,omitempty"`
	Player1   string    `json:"player1"`
	Player2   string    `json:"player2"`
	Score1    *int      `json:"score1,omitempty"`
	Score2    *int      `json:"score2,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Status    Status    `json:"status"`
}

// Edit is a partial update of the editable fields. Nil fields are left unchanged.
type Edit struct {
	RoundType *string `json:"round_type,omitempty"`
	Gender    *string `json:"gender,omitempty"`
	MatchType *string `json:"match_type,omitempty"`
	Player1   *string `json:"player1,omitempty"`
	Player2   *string `json:"player2,omitempty"`
}

// TouchesTags reports whether the edit changes any descriptive tag.
func (e Edit) TouchesTags() bool {
	return e.RoundType != nil || e.Gender != nil || e.MatchType != nil
}

// Filter selects matches in Find. Zero-valued fields match everything.
type Filter struct {
	Scope      *Scope
	Status     Status
	Kind       Kind
	Tournament string
	Place      string
	Court      string
	Group      string
	RoundType  string
	Gender     string
	MatchType  string
	// Player matches either player name, case-insensitively, as a substring.
	Player string
}
