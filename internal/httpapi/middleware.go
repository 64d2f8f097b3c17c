package httpapi

import (
	"net/http"
	"strings"
)

// bearerAuth guards the /admin group with a static bearer token, following
// the same Middleware func(http.Handler) http.Handler chaining shape as
// the pack's pkg/middleware examples.
func (s *Server) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.AdminToken == "" {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "admin API not configured"})
			return
		}

		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token != s.AdminToken {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid or missing bearer token"})
			return
		}

		next.ServeHTTP(w, r)
	})
}
