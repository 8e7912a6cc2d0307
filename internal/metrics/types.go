package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	MatchesRegistered  *prometheus.CounterVec
	MatchesEdited      prometheus.Counter
	ResultsRecorded    prometheus.Counter
	MatchesDeleted     prometheus.Counter
	LoginFailures      prometheus.Counter
	OperationDuration  *prometheus.HistogramVec
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	EventsPublished    prometheus.Counter
	EventsFailed       prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
