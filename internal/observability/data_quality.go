package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/tenderbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)

var quotedKeyRe = regexp.MustCompile(`"([^"]+)"`)

// First matching rule wins; unmatched warnings are "validation_error".
var dataQualityRules = []struct {
	issue   string
	needles []string
}{
	{"duplicate_key", []string{"duplicate", "more than once"}},
	{"dangling_reference", []string{"unknown", "dangling"}},
	{"missing_required", []string{"missing", "required"}},
	{"out_of_range", []string{"negative"}},
}

// ClassifyDataQuality buckets an importer warning into an issue kind and,
// when the message quotes one, the offending key.
func ClassifyDataQuality(msg string) (issue, key string) {
	if m := quotedKeyRe.FindStringSubmatch(msg); len(m) == 2 {
		key = strings.TrimSpace(m[1])
	}
	lower := strings.ToLower(msg)
	for _, rule := range dataQualityRules {
		for _, needle := range rule.needles {
			if strings.Contains(lower, needle) {
				return rule.issue, key
			}
		}
	}
	return "validation_error", key
}

// ReportDataQualityIssues counts and logs non-fatal import problems for stage
// (e.g. "baseline_import"), and posts a throttled webhook alert when enabled.
func ReportDataQualityIssues(ctx context.Context, log *logger.Logger, stage string, issues []string, meta map[string]any) {
	if stage = strings.TrimSpace(stage); stage == "" {
		stage = "unknown"
	}
	counts, samples := tallyIssues(stage, issues)
	if len(counts) == 0 {
		return
	}

	fields := map[string]any{}
	for k, v := range meta {
		fields[k] = v
	}
	if td := ctxutil.GetTraceData(ctx); td != nil {
		if td.TraceID != "" {
			fields["trace_id"] = td.TraceID
		}
		if td.RequestID != "" {
			fields["request_id"] = td.RequestID
		}
	}
	if log != nil {
		log.Warn("Import data quality issues", "stage", stage, "issues", counts, "sample_errors", samples, "meta", fields)
	}
	defaultNotifier.notify(ctx, log, dataQualityEvent{
		Title:     "Estimate import data quality issue",
		Stage:     stage,
		Issues:    counts,
		Samples:   samples,
		Meta:      fields,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

const maxIssueSamples = 3

func tallyIssues(stage string, issues []string) (map[string]int, []string) {
	counts := map[string]int{}
	var samples []string
	m := Current()
	for _, msg := range issues {
		if msg = strings.TrimSpace(msg); msg == "" {
			continue
		}
		if len(samples) < maxIssueSamples {
			samples = append(samples, msg)
		}
		issue, key := ClassifyDataQuality(msg)
		counts[issue]++
		if m != nil {
			m.IncDataQuality(stage, issue, key)
		}
	}
	return counts, samples
}

type dataQualityEvent struct {
	Title     string         `json:"title"`
	Stage     string         `json:"stage"`
	Issues    map[string]int `json:"issues"`
	Samples   []string       `json:"sample_errors"`
	Meta      map[string]any `json:"meta"`
	Timestamp string         `json:"timestamp"`
}

// dataQualityNotifier posts events to a webhook, at most once per interval
// per stage. Settings are read from the environment on each call.
type dataQualityNotifier struct {
	mu     sync.Mutex
	last   map[string]time.Time
	client *http.Client
	now    func() time.Time
}

var defaultNotifier = &dataQualityNotifier{client: &http.Client{Timeout: 5 * time.Second}, now: time.Now}

func (n *dataQualityNotifier) notify(ctx context.Context, log *logger.Logger, ev dataQualityEvent) {
	webhook := strings.TrimSpace(os.Getenv("DATA_QUALITY_ALERT_WEBHOOK_URL"))
	if !envFlag("DATA_QUALITY_ALERTS_ENABLED") || webhook == "" {
		return
	}
	if !n.allow(ev.Stage, alertInterval()) {
		return
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return
	}
	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodPost, webhook, bytes.NewReader(body))
	if err != nil {
		warnf(log, "Data quality alert request build failed", ev.Stage, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		warnf(log, "Data quality alert post failed", ev.Stage, err)
		return
	}
	_ = resp.Body.Close()
	if log != nil {
		log.Info("Data quality alert sent", "stage", ev.Stage, "status", resp.StatusCode)
	}
}

func (n *dataQualityNotifier) allow(stage string, every time.Duration) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.now()
	if last, ok := n.last[stage]; ok && now.Sub(last) < every {
		return false
	}
	if n.last == nil {
		n.last = map[string]time.Time{}
	}
	n.last[stage] = now
	return true
}

func alertInterval() time.Duration {
	if s, err := strconv.Atoi(strings.TrimSpace(os.Getenv("DATA_QUALITY_ALERT_MIN_INTERVAL_SECONDS"))); err == nil && s > 0 {
		return time.Duration(s) * time.Second
	}
	return 5 * time.Minute
}

func warnf(log *logger.Logger, msg, stage string, err error) {
	if log != nil {
		log.Warn(msg, "stage", stage, "error", err)
	}
}
