// Package middleware adapts authcore.Engine session checks to net/http.
//
// # Guards
//
//   - [Guard] verifies the session token from the Authorization bearer
//     header or the session cookie and stores the principal in the request
//     context.
//   - [RequireRole] and [RequireAdmin] re-read the principal's role from the
//     credential store.
//
// This package translates HTTP semantics into Engine calls. It does not
// parse tokens or touch storage itself.
package middleware
