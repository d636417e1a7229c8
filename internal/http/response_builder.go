package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"meloon/internal/core"
	"meloon/internal/log"
)

// Envelope wraps every JSON response. Code always equals the HTTP status.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ListData is the data payload of paginated listings.
type ListData[T any] struct {
	List        []T `json:"list"`
	Total       int `json:"total"`
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
}

func listOf[S, T any](p core.Page[S], conv func(S) T) ListData[T] {
	out := ListData[T]{
		List:        make([]T, 0, len(p.Items)),
		Total:       p.Total,
		CurrentPage: p.Page,
		PageSize:    p.PageSize,
	}
	for _, item := range p.Items {
		out.List = append(out.List, conv(item))
	}
	return out
}

func mapSlice[S, T any](in []S, conv func(S) T) []T {
	out := make([]T, 0, len(in))
	for _, item := range in {
		out = append(out, conv(item))
	}
	return out
}

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{Code: status, Message: message, Data: data}); err != nil {
		slog.Error("Failed to encode response", log.FieldComponent, log.ComponentHTTP, log.FieldError, err)
	}
}

func writeOK(w http.ResponseWriter, message string, data any) {
	if message == "" {
		message = "success"
	}
	writeEnvelope(w, http.StatusOK, message, data)
}

// StatusFor maps an error kind onto its HTTP status.
func StatusFor(err error) int {
	switch core.KindOf(err) {
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindValidation:
		return http.StatusBadRequest
	case core.KindConflict:
		return http.StatusConflict
	case core.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err with its mapped status. Internal errors are logged
// and replaced by a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeErrorData(w, r, err, nil)
}

// writeErrorData is writeError with a data payload describing partial work.
func writeErrorData(w http.ResponseWriter, r *http.Request, err error, data any) {
	status := StatusFor(err)
	msg := err.Error()
	var ce *core.Error
	if errors.As(err, &ce) && ce.Msg != "" {
		msg = ce.Msg
	}
	if status == http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(r.Context())).LogError(r.Context(), "Request failed", err,
			log.ComponentHTTP, r.Pattern,
			log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent()))
		msg = "internal server error"
	}
	writeEnvelope(w, status, msg, data)
}

func writeUnauthorized(w http.ResponseWriter, _ *http.Request, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="meloon"`)
	writeEnvelope(w, http.StatusUnauthorized, msg, nil)
}

func writeRateLimited(w http.ResponseWriter, _ *http.Request) {
	writeEnvelope(w, http.StatusTooManyRequests, "rate limit exceeded", nil)
}
