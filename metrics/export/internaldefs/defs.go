package internaldefs

import (
	goCookieAuth "github.com/MrEthical07/goCookieAuth"
)

// CounterDef defines a public type used by goCookieAuth APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goCookieAuth.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goCookieAuth APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goCookieAuth.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the authentication engine.
var CounterDefs = []CounterDef{
	{ID: goCookieAuth.MetricLoginSuccess, Name: "gcauth_login_success_total", Help: "Successful login attempts."},
	{ID: goCookieAuth.MetricLoginFailure, Name: "gcauth_login_failure_total", Help: "Failed login attempts."},
	{ID: goCookieAuth.MetricRefreshSuccess, Name: "gcauth_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: goCookieAuth.MetricRefreshFailure, Name: "gcauth_refresh_failure_total", Help: "Failed refresh operations."},
	{ID: goCookieAuth.MetricRefreshReuseDetected, Name: "gcauth_refresh_reuse_detected_total", Help: "Detected refresh token reuses."},
	{ID: goCookieAuth.MetricSessionCreated, Name: "gcauth_session_created_total", Help: "Created sessions."},
	{ID: goCookieAuth.MetricSessionInvalidated, Name: "gcauth_session_invalidated_total", Help: "Invalidated sessions."},
	{ID: goCookieAuth.MetricLogout, Name: "gcauth_logout_total", Help: "Logout operations."},
	{ID: goCookieAuth.MetricGateAuthenticated, Name: "gcauth_gate_authenticated_total", Help: "Requests that passed the gate with a principal."},
	{ID: goCookieAuth.MetricGateAnonymous, Name: "gcauth_gate_anonymous_total", Help: "Requests that passed the gate anonymously."},
	{ID: goCookieAuth.MetricRedirectRejected, Name: "gcauth_redirect_rejected_total", Help: "Post-login redirect targets rejected by the allowlist."},
}

// HistogramDefs is an exported constant or variable used by the authentication engine.
var HistogramDefs = []HistogramDef{
	{ID: goCookieAuth.MetricAuthenticateLatency, Name: "gcauth_authenticate_latency_seconds", Help: "Authenticate latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the authentication engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the authentication engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
