package goCookieAuth

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goCookieAuth/cookie"
	"github.com/MrEthical07/goCookieAuth/internal"
	"github.com/MrEthical07/goCookieAuth/jwt"
	"github.com/MrEthical07/goCookieAuth/password"
	"github.com/MrEthical07/goCookieAuth/redirect"
	"github.com/MrEthical07/goCookieAuth/session"
)

// Engine defines a public type used by goCookieAuth APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	jwtManager   *jwt.Manager
	sessionStore *session.Store
	cookies      *cookie.Transport
	redirects    *redirect.Guard
	passwordHash *password.Hasher
	userProvider UserProvider
	audit        *auditDispatcher
	metrics      *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// CountGateOutcome records whether a gated request resolved to a principal.
// The HTTP gate calls it once per request it inspects; skipped paths count
// nothing.
func (e *Engine) CountGateOutcome(authenticated bool) {
	if authenticated {
		e.metricInc(MetricGateAuthenticated)
		return
	}
	e.metricInc(MetricGateAnonymous)
}

// Cookies returns the cookie transport configured for this engine. The HTTP
// layer uses it to emit and clear the token cookies; the Engine itself never
// touches a ResponseWriter.
func (e *Engine) Cookies() *cookie.Transport {
	if e == nil {
		return nil
	}
	return e.cookies
}

// Login verifies credentials, creates a fresh revocable session, and mints
// the access/refresh pair bound to it. The optional redirectURI is validated
// against the configured allowlist after the session exists; a rejected
// target fails with [ErrRedirectNotAllowed] without touching the session.
//
// Unknown users and wrong passwords both collapse into
// [ErrInvalidCredentials] so the caller cannot enumerate accounts.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, email, plaintext, redirectURI string) (*LoginResult, error) {
	if e == nil || e.passwordHash == nil || e.userProvider == nil {
		return nil, ErrEngineNotReady
	}
	if email == "" || plaintext == "" {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, 0, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"reason": "empty_credentials",
			}
		})
		return nil, ErrInvalidCredentials
	}

	user, err := e.userProvider.GetUserByEmail(ctx, email)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, 0, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"reason": "user_not_found",
			}
		})
		return nil, ErrInvalidCredentials
	}

	ok, err := e.passwordHash.Verify(plaintext, user.PasswordHash)
	if err != nil || !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{
				"reason": "password_mismatch",
			}
		})
		return nil, ErrInvalidCredentials
	}
	plaintext = ""

	if statusErr := accountStatusToError(user.Status); statusErr != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, "", statusErr, func() map[string]string {
			return map[string]string{
				"reason": "account_status",
			}
		})
		return nil, statusErr
	}

	sessionID := internal.NewSessionID()

	access, err := e.jwtManager.CreateAccess(user.ID, user.Email, sessionID)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, sessionID, err, nil)
		return nil, err
	}
	refresh, err := e.jwtManager.CreateRefresh(user.ID, sessionID)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, sessionID, err, nil)
		return nil, err
	}

	if err := e.sessionStore.Create(ctx, sessionID, user.ID, refresh); err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, sessionID, ErrStoreUnavailable, func() map[string]string {
			return map[string]string{
				"reason": "session_create_failed",
			}
		})
		return nil, ErrStoreUnavailable
	}

	validated, err := e.redirects.Validate(redirectURI)
	if err != nil {
		// The session is already live and the tokens are valid; the failed
		// navigation target is a client input error, not an auth failure.
		e.metricInc(MetricRedirectRejected)
		e.emitAudit(ctx, auditEventRedirectRejected, false, user.ID, sessionID, ErrRedirectNotAllowed, func() map[string]string {
			return map[string]string{
				"candidate": redirectURI,
			}
		})
		return nil, ErrRedirectNotAllowed
	}

	e.metricInc(MetricSessionCreated)
	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, sessionID, nil, nil)

	return &LoginResult{
		UserID:      user.ID,
		Email:       user.Email,
		Name:        user.Name,
		RedirectURI: validated,
		Tokens: TokenPair{
			AccessToken:  access,
			RefreshToken: refresh,
		},
	}, nil
}

// Refresh rotates the session's refresh token and mints a new pair under the
// same session id. Rotation is an atomic compare-and-swap on the stored
// hash: a refresh token that was already used fails here and the session is
// deleted, cutting off whoever holds the other copy.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil || e.jwtManager == nil || e.sessionStore == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.jwtManager.ParseRefresh(refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, 0, "", ErrTokenInvalid, func() map[string]string {
			return map[string]string{
				"reason": "parse_failed",
			}
		})
		return nil, ErrUnauthorized
	}
	userID, err := claims.UserID()
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, 0, claims.SID, ErrTokenInvalid, nil)
		return nil, ErrUnauthorized
	}

	nextRefresh, err := e.jwtManager.CreateRefresh(userID, claims.SID)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, userID, claims.SID, err, nil)
		return nil, err
	}

	if err := e.sessionStore.Rotate(ctx, claims.SID, userID, refreshToken, nextRefresh); err != nil {
		switch {
		case errors.Is(err, session.ErrRefreshHashMismatch):
			// Any mismatch is treated as possible compromise: kill the
			// session so neither token copy works again.
			_ = e.sessionStore.Delete(ctx, claims.SID)
			e.metricInc(MetricRefreshReuseDetected)
			e.metricInc(MetricSessionInvalidated)
			e.emitAudit(ctx, auditEventRefreshReuseDetected, false, userID, claims.SID, ErrRefreshReuse, nil)
			return nil, ErrUnauthorized
		case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrSessionInactive):
			_ = e.sessionStore.Delete(ctx, claims.SID)
			e.metricInc(MetricRefreshFailure)
			e.emitAudit(ctx, auditEventRefreshInvalid, false, userID, claims.SID, ErrSessionNotFound, func() map[string]string {
				return map[string]string{
					"reason": "session_validation_failed",
				}
			})
			return nil, ErrUnauthorized
		default:
			// Store outage must not silently keep a user logged in.
			e.metricInc(MetricRefreshFailure)
			e.emitAudit(ctx, auditEventRefreshInvalid, false, userID, claims.SID, ErrStoreUnavailable, func() map[string]string {
				return map[string]string{
					"reason": "rotate_failed",
				}
			})
			return nil, ErrUnauthorized
		}
	}

	user, err := e.userProvider.GetUserByID(ctx, userID)
	if err != nil {
		_ = e.sessionStore.Delete(ctx, claims.SID)
		e.metricInc(MetricSessionInvalidated)
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, userID, claims.SID, ErrUserNotFound, nil)
		return nil, ErrUnauthorized
	}
	if statusErr := accountStatusToError(user.Status); statusErr != nil {
		_ = e.sessionStore.Delete(ctx, claims.SID)
		e.metricInc(MetricSessionInvalidated)
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, userID, claims.SID, statusErr, func() map[string]string {
			return map[string]string{
				"reason": "account_status",
			}
		})
		return nil, statusErr
	}

	access, err := e.jwtManager.CreateAccess(userID, user.Email, claims.SID)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, userID, claims.SID, err, nil)
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, userID, claims.SID, nil, nil)

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: nextRefresh,
	}, nil
}

// Authenticate reconstructs the request principal from an access token. The
// token is verified statelessly, then the referenced session must still be
// ACTIVE in the store: this is what makes logout effective despite signed
// tokens. Every failure, including store unavailability, degrades to
// [ErrUnauthorized] rather than failing open.
//
// Authenticate may return an error when input validation, dependency calls, or security checks fail.
// Authenticate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (*Principal, error) {
	if e == nil || e.jwtManager == nil || e.sessionStore == nil {
		return nil, ErrEngineNotReady
	}
	if e.metrics != nil && e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { e.metrics.Observe(MetricAuthenticateLatency, time.Since(start)) }()
	}

	claims, err := e.jwtManager.ParseAccess(accessToken)
	if err != nil {
		return nil, ErrUnauthorized
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrUnauthorized
	}

	active, err := e.sessionStore.IsActive(ctx, claims.SID, userID)
	if err != nil || !active {
		return nil, ErrUnauthorized
	}

	return &Principal{
		UserID:    userID,
		Email:     claims.Email,
		SessionID: claims.SID,
	}, nil
}

// Logout deletes the session named by the refresh token. A missing or
// unverifiable token means the caller is already effectively logged out, so
// it is a no-op; store errors are swallowed for the same reason. The caller
// clears the cookies either way.
func (e *Engine) Logout(ctx context.Context, refreshToken string) {
	if e == nil || e.jwtManager == nil || e.sessionStore == nil {
		return
	}
	if refreshToken == "" {
		return
	}

	claims, err := e.jwtManager.ParseRefresh(refreshToken)
	if err != nil {
		e.emitAudit(ctx, auditEventLogoutSession, false, 0, "", ErrTokenInvalid, func() map[string]string {
			return map[string]string{
				"reason": "invalid_refresh_token",
			}
		})
		return
	}

	userID, _ := claims.UserID()
	if err := e.sessionStore.Delete(ctx, claims.SID); err != nil {
		e.emitAudit(ctx, auditEventLogoutSession, false, userID, claims.SID, ErrStoreUnavailable, nil)
		return
	}

	e.metricInc(MetricLogout)
	e.metricInc(MetricSessionInvalidated)
	e.emitAudit(ctx, auditEventLogoutSession, true, userID, claims.SID, nil, nil)
}

// ValidateRedirect checks a post-login navigation target against the
// configured allowlist. Blank input returns ("", nil).
//
// ValidateRedirect may return an error when input validation, dependency calls, or security checks fail.
// ValidateRedirect does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ValidateRedirect(candidate string) (string, error) {
	if e == nil || e.redirects == nil {
		return "", ErrEngineNotReady
	}

	validated, err := e.redirects.Validate(candidate)
	if err != nil {
		e.metricInc(MetricRedirectRejected)
		return "", ErrRedirectNotAllowed
	}
	return validated, nil
}
