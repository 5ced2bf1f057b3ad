// Package otel exposes goCookieAuth metrics through OpenTelemetry observable
// instruments. The exporter pulls snapshots inside the meter's collection
// callback, so the engine hot path stays free of OTel dependencies.
package otel
