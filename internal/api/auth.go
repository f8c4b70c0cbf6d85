package api

import (
	"errors"
	"net/http"
	"strings"

	"binrent/internal/auth"
)

var errNoToken = errors.New("bearer token required")

// getPrincipal resolves the caller.
// - Authorization: Bearer is checked with the configured verifier.
// - In dev mode a missing token falls back to the X-Role header, then admin.
func (s *Server) getPrincipal(r *http.Request) (auth.Principal, error) {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return s.Auth.Verify(strings.TrimSpace(authz[len("Bearer "):]))
	}
	if s.Auth.Mode != "dev" {
		return auth.Principal{}, errNoToken
	}
	role := strings.ToLower(r.Header.Get("X-Role"))
	if role == "" {
		role = "admin"
	}
	return auth.Principal{Subject: "dev", Role: role}, nil
}

// authorize writes a 401 and reports false when the caller is unknown.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	p, err := s.getPrincipal(r)
	if err != nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", err.Error(), r.URL.Path)
		return auth.Principal{}, false
	}
	return p, true
}

// requireAdmin writes a 401 or 403 and reports false unless the caller is admin.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	p, ok := s.authorize(w, r)
	if !ok {
		return false
	}
	if !p.IsAdmin() {
		writeProblem(w, http.StatusForbidden, "Forbidden", "admin required", r.URL.Path)
		return false
	}
	return true
}
