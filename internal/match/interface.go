package match

import "context"

// Store is the durable table of match records.
type Store interface {
	// Create inserts a pending match, stamps m.CreatedAt and returns the assigned id.
	// Caller-supplied CreatedAt values are ignored.
	Create(ctx context.Context, m *Match) (int64, error)
	Get(ctx context.Context, id int64) (*Match, error)
	// Find returns matches selected by f, ordered by creation time then id.
	Find(ctx context.Context, f Filter) ([]*Match, error)
	Update(ctx context.Context, id int64, e Edit) error
	// SetResult stores both scores and marks the match finished.
	SetResult(ctx context.Context, id int64, score1, score2 int) error
	Delete(ctx context.Context, id int64) error
}
