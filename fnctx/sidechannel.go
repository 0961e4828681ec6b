package fnctx

import (
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"
)

// EnvContextKey is the environment variable through which the runtime hands
// the context to a handler process.
const EnvContextKey = "FN_CONTEXT"

// EncodeSideChannel serializes a context for the FN_CONTEXT side channel.
func EncodeSideChannel(c Context) ([]byte, error) {
	return json.Marshal(c)
}

// DecodeSideChannel parses side-channel context data. The side channel is
// tolerant by contract: absent, malformed or non-mapping data never fails an
// invocation and degrades to a context with every field at its documented
// default. The parse failure is recovered here and not surfaced.
func DecodeSideChannel(b []byte) Context {
	if len(b) == 0 || !gjson.ValidBytes(b) || !gjson.ParseBytes(b).IsObject() {
		return defaultContext(time.Now())
	}

	var c Context
	if err := json.Unmarshal(b, &c); err != nil {
		return defaultContext(time.Now())
	}

	return normalize(c)
}

// defaultContext is the fully-degraded context used when no side-channel
// data survives parsing.
func defaultContext(now time.Time) Context {
	return Context{
		RequestID:  UnknownValue,
		Timestamp:  epochSeconds(now),
		Parameters: map[string]string{},
		Env:        map[string]bool{},
		Tracing: Tracing{
			TraceID: UnknownValue,
			SpanID:  UnknownValue,
		},
	}
}

// normalize applies per-field defaults to a partially-populated context.
// Fields default independently; a present trace id never drags the span id
// along with it.
func normalize(c Context) Context {
	if c.RequestID == "" {
		c.RequestID = UnknownValue
	}
	if c.Timestamp == 0 {
		c.Timestamp = epochSeconds(time.Now())
	}
	if c.Tracing.TraceID == "" {
		c.Tracing.TraceID = UnknownValue
	}
	if c.Tracing.SpanID == "" {
		c.Tracing.SpanID = UnknownValue
	}
	if c.Parameters == nil {
		c.Parameters = map[string]string{}
	}
	if c.Env == nil {
		c.Env = map[string]bool{}
	}
	return c
}
