package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                 sync.Mutex
	matchesRegistered  map[string]int
	matchesEdited      int
	resultsRecorded    int
	matchesDeleted     int
	loginFailures      int
	operationDurations map[string][]float64
	slackNotifSent     int
	slackNotifFailed   int
	eventsPublished    int
	eventsFailed       int
	startupTime        float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		matchesRegistered:  make(map[string]int),
		operationDurations: make(map[string][]float64),
	}
}

func (m *Mock) IncMatchesRegistered(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesRegistered[kind]++
}

func (m *Mock) IncMatchesEdited() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesEdited++
}

func (m *Mock) IncResultsRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resultsRecorded++
}

func (m *Mock) IncMatchesDeleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesDeleted++
}

func (m *Mock) IncLoginFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginFailures++
}

func (m *Mock) ObserveOperationDuration(operation string, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operationDurations[operation] = append(m.operationDurations[operation], seconds)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) IncEventsPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsPublished++
}

func (m *Mock) IncEventsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventsFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// MatchesRegistered returns how often IncMatchesRegistered was called for kind.
func (m *Mock) MatchesRegistered(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesRegistered[kind]
}

func (m *Mock) MatchesEdited() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesEdited
}

func (m *Mock) ResultsRecorded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resultsRecorded
}

func (m *Mock) MatchesDeleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesDeleted
}

func (m *Mock) LoginFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loginFailures
}

// Observations returns the number of durations observed for operation.
func (m *Mock) Observations(operation string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.operationDurations[operation])
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}

func (m *Mock) EventsPublished() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsPublished
}

func (m *Mock) EventsFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.eventsFailed
}
