// Package model holds the account, token, and principal types shared by the
// root authcore package, the flow orchestrators, and the store adapters.
//
// The root package re-exports every type here as an alias, so callers never
// import this package directly.
package model
