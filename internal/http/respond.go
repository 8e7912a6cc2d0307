package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtqueue/internal/auth"
	"github.com/mauv0809/courtqueue/internal/lifecycle"
	"github.com/mauv0809/courtqueue/internal/match"
)

const maxBodyBytes = 1 << 20

// readJSON decodes a single JSON value from the request body into dst.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var syntaxError *json.SyntaxError
		var typeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError
		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &typeError):
			if typeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", typeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", typeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return fmt.Errorf("body contains unknown key %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)
		default:
			return err
		}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("Failed to write JSON response", "error", err)
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeError maps service errors to HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, match.ErrValidation):
		errorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, lifecycle.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidCredential),
		errors.Is(err, auth.ErrInvalidToken):
		errorResponse(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, match.ErrNotFound):
		errorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrThrottled):
		w.Header().Set("Retry-After", "60")
		errorResponse(w, http.StatusTooManyRequests, err.Error())
	default:
		log.Error("Request failed", "method", r.Method, "url", r.URL.String(), "error", err)
		errorResponse(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
	}
}
