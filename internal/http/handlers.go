package http

import (
	"context"
	"net/http"
	"time"

	"meloon/internal/auth"
	"meloon/internal/log"
)

const serviceName = "meloon"

// owner returns the authenticated owner; the auth middleware guarantees it
// is set on every API route.
func owner(r *http.Request) int64 {
	id, _ := auth.OwnerFromContext(r.Context())
	return id
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeOK(w, "", map[string]string{"service": serviceName, "version": "1.0"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeOK(w, "ok", nil)
}

// handleReady checks the database so orchestrators stop routing to an
// instance whose store is gone.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.svc.Store == nil {
		writeOK(w, "ready", nil)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.svc.Store.Ping(ctx); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
		writeEnvelope(w, http.StatusServiceUnavailable, "store unavailable", nil)
		return
	}
	writeOK(w, "ready", nil)
}
