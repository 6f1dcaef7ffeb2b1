// Package audit relays security events (logins, lockouts, resets, role
// changes) to a pluggable [Sink] without blocking the request path.
//
// The [Dispatcher] owns buffering only. Which events exist and when they are
// emitted is decided by the engine and the flow functions.
package audit
