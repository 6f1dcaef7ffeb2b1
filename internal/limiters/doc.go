// Package limiters holds the per-account brute-force defences.
//
// [LockoutTracker] counts consecutive failed logins through an
// [AttemptStore] and locks the account once the threshold is reached. The
// tracker never reads-then-writes: every transition is one conditional update
// executed by the store, so concurrent failures cannot be lost or
// double-counted.
//
// This package must not import the root authcore package.
package limiters
