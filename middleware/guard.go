package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/MrEthical07/authcore"
)

type principalContextKey struct{}

// PrincipalFromContext returns the principal stored by Guard.
func PrincipalFromContext(ctx context.Context) (authcore.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(authcore.Principal)
	return p, ok
}

// WithPrincipal stores p the way Guard does. Handlers under test use it to
// skip token issuance.
func WithPrincipal(ctx context.Context, p authcore.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// GuardOption configures Guard.
type GuardOption func(*guardConfig)

type guardConfig struct {
	ips *ClientIPResolver
}

// WithClientIPResolver sets how Guard derives the client address it puts in
// the request context. Without it only RemoteAddr is used.
func WithClientIPResolver(ips *ClientIPResolver) GuardOption {
	return func(c *guardConfig) { c.ips = ips }
}

// Guard verifies the session token and puts the principal in the request
// context. The bearer header wins over the session cookie when both are
// present. Any failure is a 401.
func Guard(engine *authcore.Engine, opts ...GuardOption) func(http.Handler) http.Handler {
	var cfg guardConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			token, ok := sessionToken(r, engine.SessionCookieName())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			p, err := engine.Authenticate(token)
			if err != nil {
				msg := "unauthorized"
				if errors.Is(err, authcore.ErrTokenExpired) {
					msg = "session expired"
				}
				writeError(w, http.StatusUnauthorized, msg)
				return
			}

			ctx := WithPrincipal(r.Context(), p)
			ctx = authcore.WithClientIP(ctx, cfg.ips.ClientIP(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionToken(r *http.Request, cookieName string) (string, bool) {
	if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
		return token, true
	}
	if cookieName == "" {
		return "", false
	}
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
