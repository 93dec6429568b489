package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
)

type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

// New builds a sugared zap logger. "prod"/"production" selects JSON output,
// "quiet" only emits warnings and above (used by the CLI), anything else is
// the development console encoder.
func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "quiet":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		cfg.OutputPaths = []string{"stderr"}
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zapLogger.Sugar()}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Debugw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Infow(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Warnw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Fatalw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(sanitizeKVs(keysAndValues)...)}
}

// keyAction decides what happens to a logged value based on its key.
type keyAction int

const (
	keepValue keyAction = iota
	redactValue
	hashValue
)

// Substrings that mark a credential. Matched against the lowercased key.
var redactedKeyParts = []string{"password", "secret", "credentials", "dsn", "api_key", "token"}

// Bidder names are hashed, never logged in clear.
var hashedKeys = map[string]bool{"company": true, "bidder": true}

type redactor struct {
	enabled bool
	salt    string
}

var (
	redactorOnce sync.Once
	active       redactor
)

func currentRedactor() redactor {
	redactorOnce.Do(func() {
		active = redactor{enabled: true, salt: strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))}
		switch strings.TrimSpace(strings.ToLower(os.Getenv("LOG_REDACTION_ENABLED"))) {
		case "0", "false", "no", "off":
			active.enabled = false
		}
	})
	return active
}

func sanitizeKVs(kv []interface{}) []interface{} {
	r := currentRedactor()
	if len(kv) == 0 || !r.enabled {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		name := toString(kv[i])
		out = append(out, name, r.apply(name, kv[i+1]))
	}
	if len(kv)%2 == 1 {
		out = append(out, kv[len(kv)-1])
	}
	return out
}

func (r redactor) apply(key string, val interface{}) interface{} {
	switch classifyKey(key) {
	case redactValue:
		return "[REDACTED]"
	case hashValue:
		return r.hash(val)
	}
	if fields, ok := val.(map[string]interface{}); ok {
		out := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			out[k] = r.apply(k, v)
		}
		return out
	}
	return val
}

func classifyKey(key string) keyAction {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return keepValue
	}
	for _, part := range redactedKeyParts {
		if strings.Contains(key, part) {
			return redactValue
		}
	}
	if hashedKeys[key] || strings.HasSuffix(key, "_company") {
		return hashValue
	}
	return keepValue
}

// hash returns a short salted digest so the same bidder correlates across lines.
func (r redactor) hash(val interface{}) string {
	raw := toString(val)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(r.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:6])
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
