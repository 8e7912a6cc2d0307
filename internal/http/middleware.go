package http

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/courtqueue/internal/auth"
	"github.com/mauv0809/courtqueue/internal/lifecycle"
)

const requestIDHeader = "X-Request-ID"

// Middleware defines the standard signature for an HTTP middleware.
type Middleware func(http.Handler) http.Handler

// Chain combines multiple middlewares into a single handler.
// The middlewares are applied in the order they are passed.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// verboseLevel raises the global log level to debug while at least one
// verbose request is running and restores the saved level after the last one.
type verboseLevel struct {
	mu     sync.Mutex
	active int
	saved  log.Level
}

var verbose = &verboseLevel{}

func (v *verboseLevel) enter() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.active == 0 {
		v.saved = log.GetLevel()
		log.SetLevel(log.DebugLevel)
	}
	v.active++
}

func (v *verboseLevel) exit() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.active--
	if v.active == 0 {
		log.SetLevel(v.saved)
	}
}

// paramsMiddleware tags the request with an id and handles the common query
// parameters 'verbose' and 'dry_run'.
func paramsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		log.Info("incoming request", "method", r.Method, "url", r.URL.String(), "request_id", requestID)

		// 'verbose' turns on debug logging while the request is in flight.
		if r.URL.Query().Get("verbose") == "true" {
			verbose.enter()
			defer verbose.exit()
		}

		// 'dry_run' renders result notifications without sending them.
		ctx := lifecycle.WithDryRun(r.Context(), r.URL.Query().Get("dry_run") == "true")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// capabilityMiddleware attaches the capability granted by a bearer token.
// Requests without a token proceed as viewers; a bad token is rejected.
func (s *Server) capabilityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			errorResponse(w, http.StatusUnauthorized, "authorization header must be a bearer token")
			return
		}
		capability, err := s.Gate.Verify(strings.TrimSpace(token))
		if err != nil {
			log.Debug("Rejected token", "error", err)
			errorResponse(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
			return
		}
		log.Debug("Admin request", "session", capability.SessionID)
		next.ServeHTTP(w, r.WithContext(auth.WithCapability(r.Context(), capability)))
	})
}

// clientKey identifies the caller for login throttling. Only the connection
// address counts; forwarding headers are client controlled.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
