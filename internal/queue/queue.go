// Package queue computes the ordered list of pending matches for a scope.
package queue

import (
	"context"
	"fmt"
	"sort"

	"github.com/mauv0809/courtqueue/internal/match"
)

// Finder is the read side of the record store used by the queue.
type Finder interface {
	Find(ctx context.Context, f match.Filter) ([]*match.Match, error)
}

// Entry is one numbered slot of a queue. Position starts at 1 and is not stored.
type Entry struct {
	Position int          `json:"position"`
	Match    *match.Match `json:"match"`
}

// Pending reads the pending matches of scope and returns them in registration
// order. Every call re-reads the store.
func Pending(ctx context.Context, finder Finder, scope match.Scope) ([]Entry, error) {
	matches, err := finder.Find(ctx, match.Filter{Scope: &scope, Status: match.StatusPending})
	if err != nil {
		return nil, fmt.Errorf("failed to read queue %s: %w", scope, err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.Before(matches[j].CreatedAt)
		}
		return matches[i].ID < matches[j].ID
	})

	entries := make([]Entry, 0, len(matches))
	for _, m := range matches {
		if m.Status != match.StatusPending {
			continue
		}
		entries = append(entries, Entry{Position: len(entries) + 1, Match: m})
	}
	return entries, nil
}
