// Package prometheus renders goCookieAuth metrics snapshots in Prometheus
// text exposition format, without depending on the Prometheus client library.
package prometheus
