// Package middleware exposes the HTTP request gate built on top of
// goCookieAuth.Engine authentication.
//
// # Guards
//
//   - [Gate] — extracts the access cookie, authenticates it, and attaches a
//     Principal to the request context; never rejects a request itself.
//   - [RequireAuth] — rejects requests without a Principal with 401.
//
// The split is deliberate: Gate populates identity, RequireAuth (or any
// downstream authorization layer) enforces it.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Reject a request inside Gate — anonymous pass-through is the contract.
package middleware
