package goCookieAuth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

type blockingSink struct {
	release chan struct{}
	seen    chan AuditEvent
}

func (s *blockingSink) Emit(_ context.Context, event AuditEvent) {
	<-s.release
	s.seen <- event
}

func TestDispatcherDeliversToChannelSink(t *testing.T) {
	sink := NewChannelSink(8)
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 8, DropIfFull: true}, sink)
	defer d.Close()

	d.Emit(context.Background(), AuditEvent{EventType: auditEventLoginSuccess, UserID: 1, Success: true})

	select {
	case event := <-sink.Events():
		if event.EventType != auditEventLoginSuccess || event.UserID != 1 {
			t.Fatalf("unexpected event: %+v", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit event")
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sink := &blockingSink{
		release: make(chan struct{}),
		seen:    make(chan AuditEvent, 16),
	}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// One event occupies the worker, one fills the buffer, the rest drop.
	for i := 0; i < 8; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: auditEventLoginFailure})
	}

	deadline := time.After(2 * time.Second)
	for d.Dropped() == 0 {
		select {
		case <-deadline:
			t.Fatal("expected dropped events under backpressure")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	close(sink.release)
	d.Close()
}

func TestDispatcherDisabledIsNil(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, NewChannelSink(1))
	if d != nil {
		t.Fatal("expected nil dispatcher when audit disabled")
	}

	// Nil receivers are usable no-ops.
	d.Emit(context.Background(), AuditEvent{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("expected zero dropped on nil dispatcher")
	}
}

func TestJSONWriterSinkWritesLines(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: auditEventLogoutSession,
		UserID:    7,
		Success:   true,
	})

	line := strings.TrimSpace(buf.String())
	var decoded AuditEvent
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("expected valid JSON line, got %q: %v", line, err)
	}
	if decoded.EventType != auditEventLogoutSession || decoded.UserID != 7 {
		t.Fatalf("unexpected decoded event: %+v", decoded)
	}
}

func TestEngineEmitsLoginFailureAudit(t *testing.T) {
	cfg := engineTestConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.BufferSize = 16

	up := newTestUserProvider(t, cfg)
	sink := NewChannelSink(16)

	mr, rdb := newTestRedis(t)
	defer mr.Close()
	defer rdb.Close()

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserProvider(up).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	ctx := WithClientIP(context.Background(), "198.51.100.7")
	if _, err := engine.Login(ctx, "alice@example.com", "wrong-password", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	select {
	case event := <-sink.Events():
		if event.EventType != auditEventLoginFailure {
			t.Fatalf("expected login_failure event, got %q", event.EventType)
		}
		if event.Error != string(auditErrInvalidCredentials) {
			t.Fatalf("expected invalid_credentials error code, got %q", event.Error)
		}
		if event.IP != "198.51.100.7" {
			t.Fatalf("expected client IP on event, got %q", event.IP)
		}
		if event.Metadata["reason"] != "password_mismatch" {
			t.Fatalf("expected password_mismatch reason, got %v", event.Metadata)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit event")
	}
}

func TestAuditErrorCodeMapping(t *testing.T) {
	cases := []struct {
		err  error
		want AuditErrorCode
	}{
		{nil, ""},
		{ErrInvalidCredentials, auditErrInvalidCredentials},
		{ErrTokenInvalid, auditErrInvalidToken},
		{ErrRefreshReuse, auditErrRefreshReuse},
		{ErrSessionNotFound, auditErrSessionNotFound},
		{ErrSessionInactive, auditErrSessionInactive},
		{ErrUserNotFound, auditErrUserNotFound},
		{ErrAccountDisabled, auditErrAccountDisabled},
		{ErrAccountLocked, auditErrAccountLocked},
		{ErrAccountDeleted, auditErrAccountDeleted},
		{ErrRedirectNotAllowed, auditErrRedirectRejected},
		{ErrStoreUnavailable, auditErrStoreUnavailable},
		{ErrUnauthorized, auditErrUnauthorized},
		{errors.New("boom"), auditErrInternal},
	}

	for _, tc := range cases {
		if got := auditErrorCode(tc.err); got != tc.want {
			t.Fatalf("auditErrorCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
