package observability

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTraceSettingsFromEnv(t *testing.T) {
	t.Setenv("OTEL_ENABLED", " Yes ")
	t.Setenv("OTEL_SAMPLER_RATIO", "2.5")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-api-key=abc, broken, =v, tenant = acme")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")

	want := traceSettings{
		Enabled:     true,
		SampleRatio: 1,
		Endpoint:    "collector:4318",
		Headers:     map[string]string{"x-api-key": "abc", "tenant": "acme"},
	}
	if diff := cmp.Diff(want, traceSettingsFromEnv()); diff != "" {
		t.Fatalf("settings (-want +got):\n%s", diff)
	}
}

func TestSampleRatio(t *testing.T) {
	cases := map[string]float64{"": 0.1, "abc": 0.1, "-1": 0, "0.25": 0.25, "7": 1}
	for raw, want := range cases {
		if got := sampleRatio(raw); got != want {
			t.Errorf("sampleRatio(%q): want=%v got=%v", raw, want, got)
		}
	}
}
