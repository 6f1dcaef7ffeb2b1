package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MrEthical07/authcore"
	"github.com/MrEthical07/authcore/internal/logging"
	"github.com/MrEthical07/authcore/middleware"
)

// PathPrefix is where Mount attaches the auth routes.
const PathPrefix = "/api/auth"

// maxBodyBytes bounds every request body.
const maxBodyBytes = 64 << 10

type API struct {
	engine       *authcore.Engine
	logger       logging.Logger
	secureCookie bool
	ips          *middleware.ClientIPResolver
}

type Option func(*API)

// WithSecureCookie marks the session cookie Secure. Enable it whenever the
// server sits behind TLS.
func WithSecureCookie(secure bool) Option {
	return func(a *API) { a.secureCookie = secure }
}

// WithClientIPResolver sets how the client address is derived for activity
// rows and audit events. The default uses RemoteAddr and ignores
// X-Forwarded-For.
func WithClientIPResolver(ips *middleware.ClientIPResolver) Option {
	return func(a *API) { a.ips = ips }
}

func New(engine *authcore.Engine, logger logging.Logger, opts ...Option) *API {
	if logger == nil {
		logger = logging.Nop()
	}
	a := &API{engine: engine, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Mount registers the auth routes on r under PathPrefix.
func (a *API) Mount(r *mux.Router) {
	s := r.PathPrefix(PathPrefix).Subrouter()
	s.Use(a.requestMeta)

	s.HandleFunc("/register", a.register).Methods(http.MethodPost)
	s.HandleFunc("/verify-email", a.verifyEmail).Methods(http.MethodPost)
	s.HandleFunc("/login", a.login).Methods(http.MethodPost)
	s.HandleFunc("/forgot-password", a.forgotPassword).Methods(http.MethodPost)
	s.HandleFunc("/reset-password", a.resetPassword).Methods(http.MethodPost)

	guard := middleware.Guard(a.engine, middleware.WithClientIPResolver(a.ips))
	s.Handle("/change-password", guard(http.HandlerFunc(a.changePassword))).Methods(http.MethodPost)
	s.Handle("/update", guard(http.HandlerFunc(a.updateEmail))).Methods(http.MethodPost)
	s.Handle("/set-role", guard(http.HandlerFunc(a.setRole))).Methods(http.MethodPost)
	s.Handle("/unlock/{username}", guard(http.HandlerFunc(a.unlock))).Methods(http.MethodPost)
}

// Router returns a fresh router with only the auth routes mounted.
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()
	a.Mount(r)
	return r
}

// requestMeta carries the client address and user agent into the engine
// for activity rows and audit events.
func (a *API) requestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := authcore.WithClientIP(r.Context(), a.ips.ClientIP(r))
		ctx = authcore.WithUserAgent(ctx, r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
