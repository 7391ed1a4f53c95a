package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/storedeck/storedeck/internal/store"
)

// BearerAuth guards the admin API with a constant-time token comparison.
func BearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) || subtle.ConstantTimeCompare([]byte(auth[len(prefix):]), []byte(token)) != 1 {
				httpError(w, http.StatusUnauthorized, "invalid or missing bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// tenantMiddleware resolves the tenant from the X-Tenant-ID header and
// scopes the request context. Every store call downstream is constrained
// to this tenant's rows.
func (s *Server) tenantMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get("X-Tenant-ID")
		if tenantID == "" {
			httpError(w, http.StatusBadRequest, "missing X-Tenant-ID header")
			return
		}

		if _, err := s.store.GetTenant(r.Context(), tenantID); err != nil {
			if err == store.ErrNotFound {
				httpError(w, http.StatusNotFound, "unknown tenant")
				return
			}
			storeError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(store.WithTenant(r.Context(), tenantID)))
	})
}
