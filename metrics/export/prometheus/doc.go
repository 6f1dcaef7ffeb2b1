// Package prometheus renders engine counters and the session verification
// latency histogram in the Prometheus text exposition format.
//
// Counter names follow authcore_*_total. The exporter never registers with
// a global registry; callers mount [Exporter.Handler] themselves.
package prometheus
