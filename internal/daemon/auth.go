package daemon

import (
	"net/http"
	"strings"

	"fieldinspect/internal/access"
	"fieldinspect/internal/services"
)

// authMiddleware resolves the acting subject and stores it on the request
// context. When the policy has no tokens every request acts as the default
// subject. Otherwise requests must include "Authorization: Bearer <token>".
func (s *apiServer) authMiddleware(policy *access.Policy, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := policy.DefaultSubject()
		if policy.RequiresToken() {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				s.writeUnauthorized(w, r)
				return
			}
			resolved, ok := policy.Authenticate(strings.TrimPrefix(auth, "Bearer "))
			if !ok {
				s.writeUnauthorized(w, r)
				return
			}
			subject = resolved
		}
		next(w, r.WithContext(services.WithSubject(r.Context(), subject)))
	}
}

func (s *apiServer) writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	requestID, _ := services.RequestIDFromContext(r.Context())
	w.Header().Set("WWW-Authenticate", `Bearer realm="fieldinspect"`)
	s.writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized", "unauthorized", requestID))
}
