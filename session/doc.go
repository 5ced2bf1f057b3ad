// Package session provides the Redis-backed revocable session record that is
// the source of truth for login state.
//
// # Record layout
//
// One hash per session at {prefix}:{sid} with fields userId, refreshHash,
// status. The raw refresh token is never stored; only its SHA-256 hex digest.
// The record TTL equals the refresh-token lifetime and is re-armed on create
// and on every successful rotation.
//
// # Architecture boundaries
//
// This package owns the [Store] (Redis operations) and the rotation CAS. It
// does NOT interpret JWT tokens or enforce authentication policy — those
// responsibilities belong to the Engine.
//
// # What this package must NOT do
//
//   - Import goCookieAuth or jwt (no upward imports).
//   - Store plaintext secrets in record fields.
//   - Validate-then-rotate as two round-trips; rotation is one Lua script.
package session
