// Package internal contains helpers private to authcore, currently the
// random token generator.
//
// Sub-packages:
//
//   - audit: async event dispatch
//   - dbx: transaction helper for SQL stores
//   - flows: one Run* function per engine operation
//   - httpapi: JSON/HTTP surface
//   - limiters: the lockout state machine
//   - logging: structured logger
//   - model: domain types and error kinds
//   - serverconfig: layered server configuration
//   - stores: Redis reset token store
package internal
