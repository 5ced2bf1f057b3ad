// Package cookie owns the HTTP cookie transport for the access/refresh token
// pair: HttpOnly always, Secure and SameSite per configuration, Max-Age equal
// to the token lifetime, and Domain omitted for localhost.
//
// # What this package must NOT do
//
//   - Inspect or validate token contents (delegates to jwt).
//   - Emit token values anywhere except Set-Cookie headers.
package cookie
