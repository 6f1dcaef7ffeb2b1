// Package stores provides the Redis-backed reset token store.
//
// Each token is persisted as a versioned, binary-encoded record under the
// SHA-256 digest of the token, with a Redis TTL matching its expiry. A second
// key per account points at the account's live token so that issuing a new
// token supersedes the old one. Consume uses WATCH/MULTI optimistic
// transactions with retry on contention; the delete inside MULTI is the
// single-use gate.
//
// This package must not import the root authcore package.
package stores
