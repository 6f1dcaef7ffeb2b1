package middleware

import (
	"errors"
	"net/http"

	"github.com/MrEthical07/authcore"
)

// RequireRole must run inside Guard. It re-reads the principal's role from
// the credential store, since roles are not carried in the token.
func RequireRole(engine *authcore.Engine, role authcore.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok || engine == nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			err := engine.RequireRole(r.Context(), p.AccountID, role)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, authcore.ErrForbidden):
				writeError(w, http.StatusForbidden, "forbidden")
			case errors.Is(err, authcore.ErrUnauthorized):
				writeError(w, http.StatusUnauthorized, "unauthorized")
			default:
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		})
	}
}

func RequireAdmin(engine *authcore.Engine) func(http.Handler) http.Handler {
	return RequireRole(engine, authcore.RoleAdmin)
}
