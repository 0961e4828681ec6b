package invoke

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Blauerdrache/fnserve/fnctx"
)

// ParseEnvelope decodes a transport-level invocation envelope, the JSON
// document carried by queue messages and Lambda payloads:
//
//	{
//	  "function": "hello",
//	  "event": {...},
//	  "request_id": "...",
//	  "tracing": {"trace_id": "...", "span_id": "...", "parent_id": "..."},
//	  "parameters": {...},
//	  "deadline_ms": 5000
//	}
//
// Only "function" is required. The event defaults to the empty mapping; the
// remaining fields feed the context builder and default per the contract.
func ParseEnvelope(b []byte) (*Request, error) {
	if !gjson.ValidBytes(b) || !gjson.ParseBytes(b).IsObject() {
		return nil, fmt.Errorf("invoke: envelope is not a JSON mapping")
	}

	doc := gjson.ParseBytes(b)

	fn := doc.Get("function").String()
	if fn == "" {
		return nil, fmt.Errorf("invoke: envelope missing function name")
	}

	req := &Request{
		Function: fn,
		Event:    []byte(`{}`),
		Meta: fnctx.RequestMeta{
			RequestID: doc.Get("request_id").String(),
		},
		Tracing: fnctx.TracingState{
			TraceID:  doc.Get("tracing.trace_id").String(),
			SpanID:   doc.Get("tracing.span_id").String(),
			ParentID: doc.Get("tracing.parent_id").String(),
		},
		Parameters: map[string]string{},
		Env:        fnctx.Snapshot{},
	}

	if ev := doc.Get("event"); ev.Exists() {
		req.Event = []byte(ev.Raw)
	}

	doc.Get("parameters").ForEach(func(k, v gjson.Result) bool {
		req.Parameters[k.String()] = v.String()
		return true
	})

	if ms := doc.Get("deadline_ms").Int(); ms > 0 {
		req.Deadline = time.Duration(ms) * time.Millisecond
	}

	return req, nil
}
