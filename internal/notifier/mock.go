package notifier

import (
	"sync"

	"github.com/mauv0809/courtqueue/internal/match"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	SendResultNotificationFunc func(m *match.Match, dryRun bool) error

	// Call records
	SendResultNotificationCalls []struct {
		Match  *match.Match
		DryRun bool
	}
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = nil
}

func (m *Mock) SendResultNotification(mt *match.Match, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, struct {
		Match  *match.Match
		DryRun bool
	}{mt, dryRun})
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(mt, dryRun)
	}
	return nil
}

// ResultNotifications returns the number of result notifications requested.
func (m *Mock) ResultNotifications() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SendResultNotificationCalls)
}
