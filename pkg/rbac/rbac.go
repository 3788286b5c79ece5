// Package rbac provides role-based route guards.
package rbac

import (
	"net/http"

	"github.com/bcardhq/bcard-api/pkg/middleware"
	"github.com/bcardhq/bcard-api/pkg/response"
)

// HasRole returns middleware that allows access only to users holding one
// of the given roles. Requires the Authenticator to have already run.
// Role mismatches are reported as 401, indistinguishable from a missing
// session.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowed[middleware.RoleFromCtx(r.Context())] {
				response.Msg(w, http.StatusUnauthorized, "Authentication invalid")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
