// Package httpapi exposes the engine as a JSON API under /api/auth.
//
// Routes are registered on a gorilla/mux router. Guarded routes run behind
// middleware.Guard, which accepts a bearer token or the session cookie set
// by a successful login. Error kinds map to fixed statuses; anything the
// engine does not classify becomes a 500 with a generic body.
package httpapi
