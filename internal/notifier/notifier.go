package notifier

import "github.com/mauv0809/courtqueue/internal/match"

// Notifier defines a high-level interface for announcing match events.
type Notifier interface {
	SendResultNotification(m *match.Match, dryRun bool) error
}

type noop struct{}

// NewNoop returns a Notifier that sends nothing. Used when no channel is configured.
func NewNoop() Notifier { return noop{} }

func (noop) SendResultNotification(*match.Match, bool) error { return nil }
