// Package redirect validates post-login redirect targets against an origin
// allowlist to prevent open-redirect abuse of the navigation parameter.
package redirect
