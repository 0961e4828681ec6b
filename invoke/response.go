package invoke

import (
	"github.com/tidwall/sjson"

	"github.com/Blauerdrache/fnserve/fnctx"
)

// APIKeyHeader is the allow-listed key whose presence is surfaced as the
// auth indicator in context mirrors.
const APIKeyHeader = "X-API-Key"

// ContextMirror renders the context-echo document served by the meta
// endpoint and produced by the example handlers. The id key is the flat
// request_id; parameters appear only when non-empty; env data surfaces only
// as the auth presence flag, never as values.
func ContextMirror(c fnctx.Context, message string) ([]byte, error) {
	out := []byte(`{}`)

	out, err := sjson.SetBytes(out, "message", message)
	if err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "request_id", c.RequestID); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "timestamp", c.Timestamp); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "tracing.trace_id", c.Tracing.TraceID); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "tracing.span_id", c.Tracing.SpanID); err != nil {
		return nil, err
	}

	if len(c.Parameters) > 0 {
		if out, err = sjson.SetBytes(out, "parameters", c.Parameters); err != nil {
			return nil, err
		}
	}

	if c.HasEnv(APIKeyHeader) {
		if out, err = sjson.SetBytes(out, "auth", "API key provided"); err != nil {
			return nil, err
		}
	}

	return out, nil
}
