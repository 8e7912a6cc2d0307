package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/courtqueue/internal/auth"
	"github.com/mauv0809/courtqueue/internal/export"
	"github.com/mauv0809/courtqueue/internal/lifecycle"
	"github.com/mauv0809/courtqueue/internal/match"
)

var errInvalidID = errors.New("match id must be a positive integer")

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// OptionsHandler returns the enumerated options the presentation layer renders.
func (s *Server) OptionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Service.Catalog())
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := readJSON(w, r, &req); err != nil {
			errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}

		token, expiresAt, err := s.Gate.Login(clientKey(r), req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredential) || errors.Is(err, auth.ErrThrottled) {
				s.Metrics.IncLoginFailures()
			}
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt.UTC().Format(time.RFC3339)})
	}
}

// QueueHandler lists the pending matches of one court (?tournament=&place=&court=)
// or one group (?group=).
func (s *Server) QueueHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		scope := match.CourtScope(q.Get("tournament"), q.Get("place"), q.Get("court"))
		if group := q.Get("group"); group != "" {
			scope = match.GroupScope(group)
		}

		entries, err := s.Service.ListPending(r.Context(), scope)
		if err != nil {
			writeError(w, r, err)
			return
		}

		resp := queueResponse{Scope: scope.String(), Entries: make([]queueEntry, 0, len(entries))}
		for _, e := range entries {
			entry := queueEntry{
				Position:  e.Position,
				ID:        e.Match.ID,
				Player1:   e.Match.Player1,
				Player2:   e.Match.Player2,
				CreatedAt: e.Match.CreatedAt.UTC().Format(time.RFC3339Nano),
			}
			if e.Match.Tags != nil {
				entry.RoundType = e.Match.Tags.RoundType
				entry.Gender = e.Match.Tags.Gender
				entry.MatchType = e.Match.Tags.MatchType
			}
			resp.Entries = append(resp.Entries, entry)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) RegisterMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lifecycle.Registration
		if err := readJSON(w, r, &req); err != nil {
			errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		m, err := s.Service.Register(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

func (s *Server) GetMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := matchID(w, r)
		if !ok {
			return
		}
		m, err := s.Service.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func (s *Server) EditMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := matchID(w, r)
		if !ok {
			return
		}
		var req match.Edit
		if err := readJSON(w, r, &req); err != nil {
			errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		m, err := s.Service.Edit(r.Context(), id, req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func (s *Server) RecordResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := matchID(w, r)
		if !ok {
			return
		}
		var req resultRequest
		if err := readJSON(w, r, &req); err != nil {
			errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Score1 == nil || req.Score2 == nil {
			errorResponse(w, http.StatusBadRequest, "score1 and score2 are required")
			return
		}
		m, err := s.Service.RecordResult(r.Context(), id, *req.Score1, *req.Score2)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func (s *Server) DeleteMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := matchID(w, r)
		if !ok {
			return
		}
		if err := s.Service.Delete(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ResultsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := s.Service.Results(r.Context(), resultsFilter(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, results)
	}
}

// ExportResultsHandler streams the filtered results as an xlsx workbook.
func (s *Server) ExportResultsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := s.Service.Results(r.Context(), resultsFilter(r))
		if err != nil {
			writeError(w, r, err)
			return
		}

		filename := fmt.Sprintf("results-%s.xlsx", time.Now().UTC().Format("20060102"))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		if err := export.WriteResults(w, results); err != nil {
			log.Error("Failed to export results", "error", err)
			return
		}
		log.Info("Exported results", "count", len(results))
	}
}

func resultsFilter(r *http.Request) match.Filter {
	q := r.URL.Query()
	return match.Filter{
		Kind:       match.Kind(q.Get("kind")),
		Tournament: q.Get("tournament"),
		Place:      q.Get("place"),
		Court:      q.Get("court"),
		Group:      q.Get("group"),
		RoundType:  q.Get("round_type"),
		Gender:     q.Get("gender"),
		MatchType:  q.Get("match_type"),
		Player:     q.Get("player"),
	}
}

func matchID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		errorResponse(w, http.StatusBadRequest, errInvalidID.Error())
		return 0, false
	}
	return id, true
}
