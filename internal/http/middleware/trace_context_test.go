package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tenderbridge-backend/internal/platform/ctxutil"
)

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name      string
		requestID string
		traceID   string
		keepReq   bool
		keepTrace bool
	}{
		{name: "caller ids kept", requestID: "req-42", traceID: "abc123", keepReq: true, keepTrace: true},
		{name: "generated when missing"},
		{name: "unsafe ids replaced", requestID: "bad id\n", traceID: strings.Repeat("x", 200)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen *ctxutil.TraceData
			r := gin.New()
			r.Use(AttachTraceContext())
			r.GET("/x", func(c *gin.Context) {
				seen = ctxutil.GetTraceData(c.Request.Context())
				c.Status(http.StatusNoContent)
			})
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.requestID != "" {
				req.Header.Set(HeaderRequestID, tc.requestID)
			}
			if tc.traceID != "" {
				req.Header.Set(HeaderTraceID, tc.traceID)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if seen == nil {
				t.Fatalf("trace data not attached to the request context")
			}
			gotReq, gotTrace := rec.Header().Get(HeaderRequestID), rec.Header().Get(HeaderTraceID)
			if gotReq != seen.RequestID || gotTrace != seen.TraceID {
				t.Fatalf("headers and context disagree: %q/%q vs %+v", gotReq, gotTrace, seen)
			}
			if gotReq == "" || gotTrace == "" {
				t.Fatalf("ids must always be set")
			}
			if (gotReq == tc.requestID) != tc.keepReq {
				t.Fatalf("request id: sent=%q got=%q", tc.requestID, gotReq)
			}
			if (gotTrace == tc.traceID) != tc.keepTrace {
				t.Fatalf("trace id: sent=%q got=%q", tc.traceID, gotTrace)
			}
		})
	}
}
