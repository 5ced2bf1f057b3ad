// Package goCookieAuth provides a cookie-based authentication engine with
// short-lived JWT access tokens, rotating JWT refresh tokens, and a
// Redis-backed revocable session record per login.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goCookieAuth is the public surface. It exposes [Engine], [Builder],
// [Config], and value types (LoginResult, Principal, MetricsSnapshot). Token
// signing, session storage, cookie transport, and redirect validation live in
// their own sub-packages and are composed here.
//
// # What this package must NOT do
//
//   - Place raw token values in anything but Set-Cookie headers (the cookie
//     transport is the only token egress).
//   - Persist user records (credential lookup is delegated to [UserProvider]).
//   - Fail open: a store outage always degrades to unauthenticated.
//
// # Performance contract
//
// Authenticate is the hot path: one signature verification plus one Redis
// HGETALL. Login and Refresh are allowed one additional Redis round-trip for
// the session write.
package goCookieAuth
