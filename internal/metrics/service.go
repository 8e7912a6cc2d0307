package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		MatchesRegistered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtqueue_matches_registered_total",
			Help: "The total number of matches registered, by kind.",
		}, []string{"kind"}),
		MatchesEdited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtqueue_matches_edited_total",
			Help: "The total number of match edits.",
		}),
		ResultsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtqueue_results_recorded_total",
			Help: "The total number of results recorded, including overwrites.",
		}),
		MatchesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtqueue_matches_deleted_total",
			Help: "The total number of matches deleted.",
		}),
		LoginFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtqueue_login_failures_total",
			Help: "The total number of rejected or throttled admin logins.",
		}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "courtqueue_operation_duration_seconds",
			Help:    "The duration of lifecycle operations.",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtqueue_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtqueue_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtqueue_events_published_total",
			Help: "The total number of lifecycle events published.",
		}),
		EventsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtqueue_events_failed_total",
			Help: "The total number of lifecycle events that failed to publish.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "courtqueue_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.MatchesRegistered,
		s.MatchesEdited,
		s.ResultsRecorded,
		s.MatchesDeleted,
		s.LoginFailures,
		s.OperationDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.EventsPublished,
		s.EventsFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncMatchesRegistered(kind string) {
	s.MatchesRegistered.WithLabelValues(kind).Inc()
}

func (s *Service) IncMatchesEdited() {
	s.MatchesEdited.Inc()
}

func (s *Service) IncResultsRecorded() {
	s.ResultsRecorded.Inc()
}

func (s *Service) IncMatchesDeleted() {
	s.MatchesDeleted.Inc()
}

func (s *Service) IncLoginFailures() {
	s.LoginFailures.Inc()
}

func (s *Service) ObserveOperationDuration(operation string, seconds float64) {
	s.OperationDuration.WithLabelValues(operation).Observe(seconds)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) IncEventsPublished() {
	s.EventsPublished.Inc()
}

func (s *Service) IncEventsFailed() {
	s.EventsFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
