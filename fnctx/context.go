package fnctx

import "time"

// UnknownValue is the documented default for identity and tracing fields
// that the caller did not supply.
const UnknownValue = "unknown"

// Tracing carries the correlation identifiers for one invocation.
// TraceID and SpanID default independently: a present trace id with a
// missing span id keeps the trace id and defaults only the span id.
type Tracing struct {
	TraceID  string `json:"trace_id"`
	SpanID   string `json:"span_id"`
	ParentID string `json:"parent_id,omitempty"`
}

// Context is the per-invocation metadata delivered to a handler alongside
// the event. It is immutable once built; each invocation gets a fresh one.
type Context struct {
	RequestID  string            `json:"request_id"`
	Timestamp  float64           `json:"timestamp"`
	Deadline   time.Duration     `json:"deadline,omitempty"`
	Parameters map[string]string `json:"parameters"`
	Env        map[string]bool   `json:"env"`
	Tracing    Tracing           `json:"tracing"`
}

// HasEnv reports whether an allow-listed key was present upstream.
// Only presence is recorded; values never enter the context.
func (c Context) HasEnv(key string) bool {
	return c.Env[key]
}

// epochSeconds converts a wall-clock time to fractional seconds since epoch,
// the wire representation of the context timestamp.
func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
