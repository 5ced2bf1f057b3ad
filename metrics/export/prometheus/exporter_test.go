package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goCookieAuth "github.com/MrEthical07/goCookieAuth"
)

type fakeSource struct {
	snapshot goCookieAuth.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() goCookieAuth.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                          { return f.dropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goCookieAuth.MetricsSnapshot{
			Counters:   map[goCookieAuth.MetricID]uint64{},
			Histograms: map[goCookieAuth.MetricID][]uint64{},
		},
		dropped: 0,
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderDeterministicIncludesCounterAndHistogram(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goCookieAuth.MetricsSnapshot{
			Counters: map[goCookieAuth.MetricID]uint64{
				goCookieAuth.MetricLoginSuccess: 7,
			},
			Histograms: map[goCookieAuth.MetricID][]uint64{
				goCookieAuth.MetricAuthenticateLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	out := exp.Render()
	if !strings.Contains(out, "gcauth_login_success_total 7") {
		t.Fatalf("expected login_success counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "gcauth_authenticate_latency_seconds_bucket{le=\"0.005\"} 1") {
		t.Fatalf("expected first histogram bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "gcauth_authenticate_latency_seconds_bucket{le=\"+Inf\"} 36") {
		t.Fatalf("expected +Inf cumulative bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "gcauth_audit_dropped_total 2") {
		t.Fatalf("expected audit dropped counter in output, got:\n%s", out)
	}
}

func TestRenderIncludesReuseAndRedirectCounters(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goCookieAuth.MetricsSnapshot{
			Counters: map[goCookieAuth.MetricID]uint64{
				goCookieAuth.MetricRefreshReuseDetected: 4,
				goCookieAuth.MetricRedirectRejected:     9,
			},
			Histograms: map[goCookieAuth.MetricID][]uint64{},
		},
	})

	out := exp.Render()
	if !strings.Contains(out, "gcauth_refresh_reuse_detected_total 4") {
		t.Fatalf("expected reuse counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "gcauth_redirect_rejected_total 9") {
		t.Fatalf("expected redirect counter in output, got:\n%s", out)
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goCookieAuth.MetricsSnapshot{
			Counters:   map[goCookieAuth.MetricID]uint64{goCookieAuth.MetricLoginSuccess: 1},
			Histograms: map[goCookieAuth.MetricID][]uint64{},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: goCookieAuth.MetricsSnapshot{
			Counters: map[goCookieAuth.MetricID]uint64{
				goCookieAuth.MetricLoginSuccess:       1000,
				goCookieAuth.MetricLoginFailure:       40,
				goCookieAuth.MetricRefreshSuccess:     800,
				goCookieAuth.MetricRefreshFailure:     10,
				goCookieAuth.MetricSessionCreated:     800,
				goCookieAuth.MetricSessionInvalidated: 20,
				goCookieAuth.MetricRedirectRejected:   3,
			},
			Histograms: map[goCookieAuth.MetricID][]uint64{
				goCookieAuth.MetricAuthenticateLatency: {10, 20, 30, 40, 50, 60, 70, 80},
			},
		},
		dropped: 0,
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
