package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/mauv0809/courtqueue/internal/auth"
	"github.com/mauv0809/courtqueue/internal/lifecycle"
	"github.com/mauv0809/courtqueue/internal/metrics"
)

func NewServer(service *lifecycle.Service, gate *auth.Gate, metricsSvc metrics.Metrics, metricsHandler http.Handler, allowedOrigins []string) *Server {
	server := &Server{
		Service:        service,
		Gate:           gate,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Router:         chi.NewRouter(),
	}

	server.routes()
	server.handler = Chain(server.Router,
		cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			ExposedHeaders: []string{"Content-Disposition", requestIDHeader},
			MaxAge:         300,
		}),
		paramsMiddleware,
		server.capabilityMiddleware,
	)
	return server
}

func (s *Server) routes() {
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Get("/health", s.HealthCheckHandler())
	s.Router.Get("/options", s.OptionsHandler())
	s.Router.Post("/auth/login", s.LoginHandler())

	s.Router.Get("/queue", s.QueueHandler())
	s.Router.Route("/matches", func(r chi.Router) {
		r.Post("/", s.RegisterMatchHandler())
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetMatchHandler())
			r.Patch("/", s.EditMatchHandler())
			r.Delete("/", s.DeleteMatchHandler())
			r.Post("/result", s.RecordResultHandler())
		})
	})
	s.Router.Get("/results", s.ResultsHandler())
	s.Router.Get("/results/export", s.ExportResultsHandler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
