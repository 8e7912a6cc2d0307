package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/courtqueue/internal/auth"
	"github.com/mauv0809/courtqueue/internal/lifecycle"
	"github.com/mauv0809/courtqueue/internal/metrics"
)

type Server struct {
	Service        *lifecycle.Service
	Gate           *auth.Gate
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Router         chi.Router
	handler        http.Handler
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

type resultRequest struct {
	Score1 *int `json:"score1"`
	Score2 *int `json:"score2"`
}

type queueResponse struct {
	Scope   string       `json:"scope"`
	Entries []queueEntry `json:"entries"`
}

type queueEntry struct {
	Position int    `json:"position"`
	ID       int64  `json:"id"`
	Player1  string `json:"player1"`
	Player2  string `json:"player2"`
	// Tags are only present on official matches.
	RoundType string `json:"round_type,omitempty"`
	Gender    string `json:"gender,omitempty"`
	MatchType string `json:"match_type,omitempty"`
	CreatedAt string `json:"created_at"`
}
