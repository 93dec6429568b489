package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/tenderbridge-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/tenderbridge-backend/internal/domain/aggregates"
)

// HooksRecorder keeps every aggregate write and retry it is told about.
type HooksRecorder struct {
	mu      sync.Mutex
	writes  []WriteEvent
	retries map[string]int
}

type WriteEvent struct {
	Op       string
	Code     domainagg.ErrorCode
	Attempts int
	Duration time.Duration
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveWrite(op string, code domainagg.ErrorCode, attempts int, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writes = append(h.writes, WriteEvent{Op: op, Code: code, Attempts: attempts, Duration: dur})
}

func (h *HooksRecorder) IncRetry(op string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.retries == nil {
		h.retries = map[string]int{}
	}
	h.retries[op]++
}

// Writes returns a copy of the recorded write events in order.
func (h *HooksRecorder) Writes() []WriteEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]WriteEvent(nil), h.writes...)
}

func (h *HooksRecorder) Retries(op string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.retries[op]
}

// Last returns the most recent write for op.
func (h *HooksRecorder) Last(op string) (WriteEvent, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.writes) - 1; i >= 0; i-- {
		if h.writes[i].Op == op {
			return h.writes[i], true
		}
	}
	return WriteEvent{}, false
}
