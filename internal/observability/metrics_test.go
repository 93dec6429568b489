package observability

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("POST", "/api/offers/import", "201", 40*time.Millisecond)
	m.ObserveAPI("GET", "/api/alerts", "503", time.Millisecond)
	m.ObserveReconcileRun("aggregated", "success", 120*time.Millisecond)
	m.AddReconcileItems("aggregated", "baseline", "resolved", 3)
	m.AddReconcileAlerts("quantity_mismatch", "warning", 2)
	m.ObserveMerge("success", 1, 0)
	m.ObserveAggregateOperation("Estimates.Offer.ReplaceReconciliation", "success", time.Millisecond)
	m.IncAggregateConflict("Estimates.Alert.Resolve")

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`tb_api_requests_total{method="POST",route="/api/offers/import",status="201"} 1.000000`,
		`tb_api_requests_error_total 1.000000`,
		`tb_reconcile_runs_total{mode="aggregated",status="success"} 1.000000`,
		`tb_reconcile_items_total{mode="aggregated",origin="baseline",resolution="resolved"} 3.000000`,
		`tb_reconcile_alerts_total{type="quantity_mismatch",severity="warning"} 2.000000`,
		`tb_merge_mismatches_total{kind="quantity"} 1.000000`,
		`tb_aggregate_conflicts_total{op="Estimates.Alert.Resolve"} 1.000000`,
		`tb_reconcile_run_duration_seconds_bucket{mode="aggregated",le="0.25"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, `kind="price"`) {
		t.Fatalf("zero price mismatches should not create a series")
	}
}

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.ObserveReconcileRun("detailed", "success", time.Millisecond)
	m.IncAggregateRetry("op")
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("nil WritePrometheus: %v", err)
	}
	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 503 {
		t.Fatalf("nil WriteHTTP status: want=503 got=%d", rec.Code)
	}
}

func TestLabelEscaping(t *testing.T) {
	got := labelString([]string{"key"}, []string{`Steel "HEA" \ beam`})
	if got != `{key="Steel \"HEA\" \\ beam"}` {
		t.Fatalf("labelString: got=%s", got)
	}
	if got := withLe(`{mode="detailed"}`, "0.5"); got != `{mode="detailed",le="0.5"}` {
		t.Fatalf("withLe: got=%s", got)
	}
}
