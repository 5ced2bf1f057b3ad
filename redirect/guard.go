package redirect

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrRedirectNotAllowed is returned for any candidate that is neither an
// exact allowlist entry nor a match on an allowlisted origin. This is a
// client input-validation failure, not an authentication failure.
var ErrRedirectNotAllowed = errors.New("redirect target not allowed")

type origin struct {
	scheme string
	host   string
	port   int
}

// Guard validates optional post-login redirect targets against a configured
// allowlist, closing the open-redirect hole in the navigation parameter
// while still permitting arbitrary paths and queries under trusted origins.
//
// Guard instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Guard struct {
	exact   map[string]struct{}
	origins []origin
}

// NewGuard parses the allowlist eagerly so malformed configuration fails at
// startup instead of at request time.
//
// NewGuard may return an error when input validation, dependency calls, or security checks fail.
// NewGuard does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewGuard(allowed []string) (*Guard, error) {
	g := &Guard{
		exact:   make(map[string]struct{}, len(allowed)),
		origins: make([]origin, 0, len(allowed)),
	}

	for _, entry := range allowed {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		o, ok := parseOrigin(entry)
		if !ok {
			return nil, fmt.Errorf("invalid redirect allowlist entry %q", entry)
		}
		g.exact[entry] = struct{}{}
		g.origins = append(g.origins, o)
	}

	return g, nil
}

// Validate returns the candidate unchanged when it is allowed, the empty
// string when no redirect was requested, and [ErrRedirectNotAllowed]
// otherwise. Blank input is "no redirect", never an error.
func (g *Guard) Validate(candidate string) (string, error) {
	if strings.TrimSpace(candidate) == "" {
		return "", nil
	}

	if _, ok := g.exact[candidate]; ok {
		return candidate, nil
	}

	o, ok := parseOrigin(candidate)
	if !ok {
		return "", ErrRedirectNotAllowed
	}
	for _, allowed := range g.origins {
		if o == allowed {
			return candidate, nil
		}
	}

	return "", ErrRedirectNotAllowed
}

// parseOrigin reduces a URL to its (scheme, host, normalized port) triple.
// Absent ports default to 80 for http and 443 for https; other schemes get
// no default, so their comparison only succeeds on an explicit port match.
func parseOrigin(raw string) (origin, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return origin{}, false
	}

	o := origin{
		scheme: strings.ToLower(u.Scheme),
		host:   strings.ToLower(u.Hostname()),
		port:   -1,
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return origin{}, false
		}
		o.port = port
	} else {
		switch o.scheme {
		case "http":
			o.port = 80
		case "https":
			o.port = 443
		}
	}

	return o, true
}
