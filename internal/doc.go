// Package internal contains helper utilities that are intentionally private to
// goCookieAuth: session-id generation and refresh-token digest helpers.
//
// # What this package must NOT do
//
//   - Export types that appear in the public goCookieAuth API.
//   - Be imported by any package outside the goCookieAuth module.
package internal
