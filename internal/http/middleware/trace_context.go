package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/tenderbridge-backend/internal/platform/ctxutil"
)

const (
	HeaderTraceID   = "X-Trace-Id"
	HeaderRequestID = "X-Request-Id"

	maxCallerIDLen = 128
)

// AttachTraceContext gives every request a request id and a trace id, both
// echoed in the response headers and carried in the request context for
// service logs. A caller supplied request id is kept when it is sane. The
// trace id comes from the active span when otelgin started one.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := callerID(c.GetHeader(HeaderRequestID))
		if reqID == "" {
			reqID = uuid.NewString()
		}

		var traceID string
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			traceID = sc.TraceID().String()
		} else if traceID = callerID(c.GetHeader(HeaderTraceID)); traceID == "" {
			traceID = strings.ReplaceAll(uuid.NewString(), "-", "")
		}

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), &ctxutil.TraceData{
			TraceID:   traceID,
			RequestID: reqID,
		}))
		h := c.Writer.Header()
		h.Set(HeaderTraceID, traceID)
		h.Set(HeaderRequestID, reqID)
		c.Next()
	}
}

// callerID returns v when it is short and limited to id-like characters.
func callerID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || len(v) > maxCallerIDLen {
		return ""
	}
	for _, r := range v {
		ok := r == '-' || r == '_' || r == '.' || r == ':' ||
			(r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !ok {
			return ""
		}
	}
	return v
}
