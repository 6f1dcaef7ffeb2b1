// Package otel binds engine metrics to an OpenTelemetry meter.
//
// [New] registers one Int64ObservableCounter per engine outcome. Session
// verification latency becomes two gauges: "_bucket", with one cumulative
// point per "le" bound, and "_count". A single callback reads the engine
// snapshot on each collection. Callers own the MeterProvider.
package otel
