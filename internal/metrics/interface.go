package metrics

// Metrics defines the interface for collecting application metrics.
type Metrics interface {
	IncMatchesRegistered(kind string)
	IncMatchesEdited()
	IncResultsRecorded()
	IncMatchesDeleted()
	IncLoginFailures()
	ObserveOperationDuration(operation string, seconds float64)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	IncEventsPublished()
	IncEventsFailed()
	SetStartupTime(duration float64)
}
