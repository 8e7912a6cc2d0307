package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/mauv0809/courtqueue/internal/config"
	"github.com/mauv0809/courtqueue/internal/match"
	"github.com/mauv0809/courtqueue/internal/metrics"
	"github.com/mauv0809/courtqueue/internal/notifier"
	"github.com/mauv0809/courtqueue/internal/pubsub"
)

// ErrUnauthorized is returned when a mutation is attempted without an admin capability.
var ErrUnauthorized = errors.New("admin capability required")

// Service enforces the match lifecycle on top of a match.Store.
type Service struct {
	store    match.Store
	notifier notifier.Notifier
	metrics  metrics.Metrics
	pubsub   pubsub.PubSubClient
	catalog  config.Catalog
	dryRun   bool
	now      func() time.Time
}

// Registration is the input of Register.
type Registration struct {
	Scope   match.Scope `json:"scope"`
	Tags    *match.Tags `json:"tags,omitempty"`
	Player1 string      `json:"player1"`
	Player2 string      `json:"player2"`
}

type contextKey string

const dryRunKey contextKey = "dryRun"

// WithDryRun marks ctx so that result notifications are rendered but not sent.
func WithDryRun(ctx context.Context, dryRun bool) context.Context {
	return context.WithValue(ctx, dryRunKey, dryRun)
}

func isDryRun(ctx context.Context) bool {
	dryRun, ok := ctx.Value(dryRunKey).(bool)
	return ok && dryRun
}
