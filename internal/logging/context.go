package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"
)

type contextKey string

const (
	loggerKey  contextKey = "logger"
	traceIDKey contextKey = "trace_id"
)

// GenerateTraceID generates a new trace ID.
func GenerateTraceID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// FromContext retrieves the logger from context.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerKey).(*Logger); ok {
		return l
	}
	return Default()
}

// NewContext creates a new context with the logger.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// WithTraceContext adds a trace ID to the context and returns a logger with it.
func WithTraceContext(ctx context.Context) (context.Context, *Logger) {
	traceID := GenerateTraceID()
	l := Default().WithTraceID(traceID)
	newCtx := context.WithValue(ctx, traceIDKey, traceID)
	newCtx = context.WithValue(newCtx, loggerKey, l)
	return newCtx, l
}

// BlockContext creates a logger context for one ingested block.
func BlockContext(blockIndex uint32, direction string, magnitude float64) *Logger {
	return Default().WithFields(map[string]interface{}{
		"block_index": blockIndex,
		"direction":   direction,
		"magnitude":   magnitude,
	}).WithComponent("block")
}

// PatternContext creates a logger context for pattern lifecycle events.
func PatternContext(pattern string, state string) *Logger {
	return Default().WithFields(map[string]interface{}{
		"pattern": pattern,
		"state":   state,
	}).WithComponent("pattern")
}

// DecisionContext creates a logger context for a hierarchy decision.
func DecisionContext(source, pattern string, blockIndex uint32) *Logger {
	return Default().WithFields(map[string]interface{}{
		"source":      source,
		"pattern":     pattern,
		"block_index": blockIndex,
	}).WithComponent("decision")
}

// HostilityContext creates a logger context for hostility state changes.
func HostilityContext(score float64, locked bool) *Logger {
	return Default().WithFields(map[string]interface{}{
		"score":  score,
		"locked": locked,
	}).WithComponent("hostility")
}

// LedgerContext creates a logger context for a closed ledger entry.
func LedgerContext(pattern string, pnl float64, isReal bool) *Logger {
	return Default().WithFields(map[string]interface{}{
		"pattern": pattern,
		"pnl":     pnl,
		"real":    isReal,
	}).WithComponent("ledger")
}

// UndoContext creates a logger context for an undo operation.
func UndoContext(blockIndex uint32) *Logger {
	return Default().WithFields(map[string]interface{}{
		"block_index": blockIndex,
	}).WithComponent("undo")
}

// APIContext creates a logger context for API operations.
func APIContext(method, path string, statusCode int) *Logger {
	return Default().WithFields(map[string]interface{}{
		"method":      method,
		"path":        path,
		"status_code": statusCode,
	}).WithComponent("api")
}

// StreamContext creates a logger context for websocket stream operations.
func StreamContext(clientCount int) *Logger {
	return Default().WithFields(map[string]interface{}{
		"clients": clientCount,
	}).WithComponent("stream")
}

// HTTPMiddleware is a middleware that adds logging to HTTP requests.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = GenerateTraceID()
		}

		l := Default().WithTraceID(traceID).WithFields(map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"remote_addr": r.RemoteAddr,
			"user_agent":  r.UserAgent(),
		}).WithComponent("http")

		ctx := NewContext(r.Context(), l)
		r = r.WithContext(ctx)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: 200}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		l.WithDuration(duration).WithField("status_code", wrapped.statusCode).Info("request completed")
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
