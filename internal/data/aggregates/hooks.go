package aggregates

import (
	"time"

	domainagg "github.com/yungbote/tenderbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/tenderbridge-backend/internal/observability"
)

// Hooks receives one ObserveWrite per aggregate write, after any retries,
// and one IncRetry per repeated attempt. code is empty on success.
type Hooks interface {
	ObserveWrite(op string, code domainagg.ErrorCode, attempts int, dur time.Duration)
	IncRetry(op string)
}

type noopHooks struct{}

func (noopHooks) ObserveWrite(string, domainagg.ErrorCode, int, time.Duration) {}
func (noopHooks) IncRetry(string)                                             {}

// NewObservabilityHooks reports aggregate writes as tb_aggregate_* metrics.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return metricsHooks{m: metrics}
}

type metricsHooks struct {
	m *observability.Metrics
}

func (h metricsHooks) ObserveWrite(op string, code domainagg.ErrorCode, _ int, dur time.Duration) {
	h.m.ObserveAggregateOperation(op, writeStatus(code), dur)
	if code == domainagg.CodeConflict {
		h.m.IncAggregateConflict(op)
	}
}

func (h metricsHooks) IncRetry(op string) { h.m.IncAggregateRetry(op) }

func writeStatus(code domainagg.ErrorCode) string {
	if code == "" {
		return "success"
	}
	return string(code)
}
