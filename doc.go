// Package authcore manages credentials and sessions: Argon2id password
// hashing, per-account brute-force lockout, single-use password reset
// tokens, stateless HS256 session tokens and admin-gated account operations.
//
// An [Engine] is assembled once with [Builder] over a [CredentialStore] and
// is safe for concurrent use afterwards. Every operation is a method on the
// engine that delegates to an orchestrator in internal/flows.
//
// The engine holds no session state. Races on the failed-attempt counter and
// on reset-token redemption are closed by the store, which must implement
// each mutating method as one atomic conditional update.
//
// The package must not expose database handles or Redis clients in its API.
package authcore
