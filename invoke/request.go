package invoke

import (
	"encoding/json"
	"time"

	"github.com/Blauerdrache/fnserve/fnctx"
)

// Engine-level failure kinds. The codec kinds cover contract failures; these
// two cover routing and availability, which never reach a handler.
const (
	KindNotFound    = "not_found"
	KindUnavailable = "unavailable"
)

// Request is one invocation as seen by the orchestrator. Front doors
// (HTTP, SQS, CLI) translate their transport into this shape.
type Request struct {
	// Function is the registry name of the handler to run.
	Function string
	// Event is the raw inbound event payload. It must decode to a JSON
	// mapping; anything else short-circuits as malformed input.
	Event []byte
	// Meta, Tracing, Parameters and Env feed the context builder.
	Meta       fnctx.RequestMeta
	Tracing    fnctx.TracingState
	Parameters map[string]string
	Env        fnctx.Snapshot
	// Deadline optionally tightens the platform default. It can never
	// loosen it.
	Deadline time.Duration
}

// ErrorBody is the caller-facing error descriptor. Messages are sanitized:
// no environment contents, no stack traces, no filesystem paths.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Response is the normalized outcome of one invocation. Exactly one of
// Payload and Error is populated.
type Response struct {
	RequestID string                 `json:"request_id,omitempty"`
	TraceID   string                 `json:"trace_id,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Error     *ErrorBody             `json:"error,omitempty"`
}

// Marshal serializes the response envelope.
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

func errorResponse(kind, message string) *Response {
	return &Response{
		Error: &ErrorBody{Kind: kind, Message: message},
	}
}
