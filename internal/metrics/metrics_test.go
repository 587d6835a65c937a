package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCountsInvocations(t *testing.T) {
	c := New()
	c.ObserveInvocation("X", OutcomeOK, time.Millisecond)
	c.ObserveInvocation("X", OutcomeOK, time.Millisecond)
	c.ObserveInvocation("Y", OutcomePanic, time.Millisecond)

	if got := testutil.ToFloat64(c.invocationsTotal.WithLabelValues("X", OutcomeOK)); got != 2 {
		t.Fatalf("X ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.invocationsTotal.WithLabelValues("Y", OutcomePanic)); got != 1 {
		t.Fatalf("Y panic = %v, want 1", got)
	}
}

func TestCollectorHandlerExposesMetrics(t *testing.T) {
	c := New()
	c.ObserveRequest("ok", 2*time.Millisecond, 3)
	c.AddCycles(2)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	body := rec.Body.String()
	for _, want := range []string{"codeact_requests_total", "codeact_ordering_cycles_broken_total 2"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics output:\n%s", want, body)
		}
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.ObserveRequest("ok", 0, 0)
	c.ObserveInvocation("X", OutcomeOK, 0)
	c.AddCycles(1)
	if c.Registry() != nil {
		t.Fatal("nil collector must not expose a registry")
	}
}
