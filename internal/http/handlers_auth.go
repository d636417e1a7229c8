package http

import (
	"fmt"
	"net/http"
	"time"

	"meloon/internal/auth"
	"meloon/internal/core"
)

type tokenConfig struct {
	secret string
	issuer string
	ttl    time.Duration
}

// handleRegister and handleLogin sit outside the bearer middleware; both
// answer with a fresh token for the user.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.svc.Users.Register(r.Context(), core.Registration{
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
		Language: req.Language,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeSession(w, r, "registered", u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.svc.Users.Login(r.Context(), core.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeSession(w, r, "", u)
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, message string, u core.User) {
	token, err := auth.GenerateToken(s.tokens.secret, s.tokens.issuer, u.ID, s.tokens.ttl)
	if err != nil {
		writeError(w, r, fmt.Errorf("issue token: %w", err))
		return
	}
	writeOK(w, message, sessionDTO{UserID: u.ID, Nickname: u.Nickname, Token: token})
}
