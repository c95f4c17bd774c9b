package http

import (
	"context"
	"net/http"

	"signaldesk/internal/core"
	"signaldesk/internal/services"
)

type claimsKey struct{}

// ClaimsFromContext returns the session claims of an authenticated request.
func ClaimsFromContext(ctx context.Context) (*services.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*services.Claims)
	return c, ok
}

type registerResponse struct {
	User    core.Person      `json:"user"`
	Session services.Session `json:"session"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if _, err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	session, err := s.app.Auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if _, err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, session, err := s.app.Auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{User: user, Session: session})
}

// requireAuth rejects requests without a valid bearer token.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.app.Auth.Verify(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}
