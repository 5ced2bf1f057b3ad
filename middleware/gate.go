package middleware

import (
	"context"
	"net/http"
	"strings"

	goCookieAuth "github.com/MrEthical07/goCookieAuth"
)

type principalContextKey struct{}

// PrincipalFromContext returns the authenticated principal attached by
// [Gate], if any. A missing principal means the request is anonymous.
func PrincipalFromContext(ctx context.Context) (*goCookieAuth.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*goCookieAuth.Principal)
	return p, ok
}

// GateConfig controls which request paths the gate skips entirely. Skipped
// paths (the auth flow endpoints themselves, documentation routes) never pay
// for a token parse or a session lookup.
//
// GateConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type GateConfig struct {
	SkipPaths    []string
	SkipPrefixes []string
}

// Gate returns middleware that reconstructs the authenticated principal from
// the access cookie and attaches it to the request context. It only
// populates identity: a request that fails any check proceeds anonymously,
// and rejection is left to [RequireAuth] or another downstream layer.
func Gate(engine *goCookieAuth.Engine, cfg GateConfig) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}
	prefixes := append([]string(nil), cfg.SkipPrefixes...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil || skipPath(r.URL.Path, skip, prefixes) {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := engine.Cookies().ExtractAccess(r)
			if !ok {
				engine.CountGateOutcome(false)
				next.ServeHTTP(w, r)
				return
			}

			principal, err := engine.Authenticate(r.Context(), token)
			if err != nil {
				// Verification failure is silently non-fatal here.
				engine.CountGateOutcome(false)
				next.ServeHTTP(w, r)
				return
			}

			engine.CountGateOutcome(true)
			ctx := context.WithValue(r.Context(), principalContextKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth returns middleware that rejects requests lacking a principal
// with 401. It must run after [Gate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func skipPath(path string, skip map[string]struct{}, prefixes []string) bool {
	if _, ok := skip[path]; ok {
		return true
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
