package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AdminGate checks the shared admin password. A bcrypt hash is preferred;
// a plain secret is supported for parity with the original gate and is
// compared in constant time.
type AdminGate struct {
	hash   []byte
	secret string
}

// NewAdminGate creates a gate from a bcrypt hash and/or a plain secret.
// The hash wins when both are set.
func NewAdminGate(hash, secret string) *AdminGate {
	return &AdminGate{hash: []byte(hash), secret: secret}
}

// Allow reports whether the presented password opens the gate.
func (g *AdminGate) Allow(password string) bool {
	if password == "" {
		return false
	}
	if len(g.hash) > 0 {
		return bcrypt.CompareHashAndPassword(g.hash, []byte(password)) == nil
	}
	if g.secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(g.secret), []byte(password)) == 1
}

// requireAdmin wraps a handler with the password gate. The password comes
// from "Authorization: Bearer <password>" or the X-Admin-Password header.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.gate == nil || !s.gate.Allow(adminPassword(r)) {
			writeError(w, http.StatusUnauthorized, "admin password required")
			return
		}
		next(w, r)
	}
}

func adminPassword(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.Header.Get("X-Admin-Password")
}
