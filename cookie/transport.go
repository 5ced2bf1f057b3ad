package cookie

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// Config defines a public type used by goCookieAuth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	AccessName  string
	RefreshName string
	Domain      string
	Secure      bool
	SameSite    http.SameSite
}

// Transport builds and parses the cookie representation of the token pair.
// Raw token values travel only through these cookies; they never appear in
// a response body.
//
// Transport instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Transport struct {
	config     Config
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTransport describes the newtransport operation and its observable behavior.
//
// NewTransport may return an error when input validation, dependency calls, or security checks fail.
// NewTransport does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewTransport(cfg Config, accessTTL, refreshTTL time.Duration) (*Transport, error) {
	if strings.TrimSpace(cfg.AccessName) == "" || strings.TrimSpace(cfg.RefreshName) == "" {
		return nil, errors.New("cookie names must not be blank")
	}
	if cfg.AccessName == cfg.RefreshName {
		return nil, errors.New("access and refresh cookie names must differ")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("invalid cookie TTL configuration")
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = http.SameSiteLaxMode
	}

	return &Transport{
		config:     cfg,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// BuildAccess returns the Set-Cookie representation of an access token.
func (t *Transport) BuildAccess(token string) *http.Cookie {
	return t.build(t.config.AccessName, token, int(t.accessTTL.Seconds()))
}

// BuildRefresh returns the Set-Cookie representation of a refresh token.
func (t *Transport) BuildRefresh(token string) *http.Cookie {
	return t.build(t.config.RefreshName, token, int(t.refreshTTL.Seconds()))
}

// BuildAccessClear returns a cookie that immediately expires the access
// cookie on the client.
func (t *Transport) BuildAccessClear() *http.Cookie {
	return t.build(t.config.AccessName, "", -1)
}

// BuildRefreshClear returns a cookie that immediately expires the refresh
// cookie on the client.
func (t *Transport) BuildRefreshClear() *http.Cookie {
	return t.build(t.config.RefreshName, "", -1)
}

// ExtractAccess returns the access token carried by the request, if any.
// Blank values are treated as absent.
func (t *Transport) ExtractAccess(r *http.Request) (string, bool) {
	return extract(r, t.config.AccessName)
}

// ExtractRefresh returns the refresh token carried by the request, if any.
func (t *Transport) ExtractRefresh(r *http.Request) (string, bool) {
	return extract(r, t.config.RefreshName)
}

func (t *Transport) build(name, value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   t.config.Secure,
		SameSite: t.config.SameSite,
	}

	// Browsers reject an explicit Domain=localhost; omitting the attribute
	// keeps local development working against the same config shape.
	domain := strings.TrimSpace(t.config.Domain)
	if domain != "" && !strings.EqualFold(domain, "localhost") {
		c.Domain = domain
	}

	return c
}

func extract(r *http.Request, name string) (string, bool) {
	if r == nil {
		return "", false
	}
	c, err := r.Cookie(name)
	if err != nil {
		return "", false
	}
	value := strings.TrimSpace(c.Value)
	if value == "" {
		return "", false
	}
	return value, true
}
