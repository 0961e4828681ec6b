package fnctx

import "strings"

// RequestMeta is the request-scoped identity handed to the builder by the
// front door.
type RequestMeta struct {
	RequestID string
}

// TracingState is the upstream tracing state, usually extracted from
// X-Trace-ID / X-Parent-Span style headers. Empty fields degrade to
// UnknownValue independently.
type TracingState struct {
	TraceID  string
	SpanID   string
	ParentID string
}

// Snapshot is the raw environment data visible to the builder. The builder
// never reads ambient process state; callers hand it an explicit snapshot.
type Snapshot map[string]string

// Builder assembles invocation contexts. It is a pure function of its
// inputs plus the injected clock used for the default timestamp.
type Builder struct {
	*Options
}

func NewBuilder(opts ...Option) *Builder {
	return &Builder{
		Options: NewOptions(opts...),
	}
}

// Build assembles a Context from request metadata, tracing state, query
// parameters and an environment snapshot. Absence of upstream data never
// fails the build; every field degrades to its documented default.
func (b *Builder) Build(meta RequestMeta, tracing TracingState, params map[string]string, env Snapshot) Context {
	c := Context{
		RequestID:  meta.RequestID,
		Timestamp:  epochSeconds(b.Clock()),
		Deadline:   b.DefaultDeadline,
		Parameters: map[string]string{},
		Env:        map[string]bool{},
		Tracing: Tracing{
			TraceID:  tracing.TraceID,
			SpanID:   tracing.SpanID,
			ParentID: tracing.ParentID,
		},
	}

	if c.RequestID == "" {
		c.RequestID = UnknownValue
	}
	if c.Tracing.TraceID == "" {
		c.Tracing.TraceID = UnknownValue
	}
	if c.Tracing.SpanID == "" {
		c.Tracing.SpanID = UnknownValue
	}

	for k, v := range params {
		c.Parameters[k] = v
	}

	// Env filtering: only allow-listed keys survive, and only as presence
	// flags. Values never cross this boundary. Matching is case-insensitive
	// since HTTP front doors hand over canonicalized header keys; the flag
	// is keyed by the allow-list spelling.
	for _, key := range b.AllowedEnvKeys {
		for k := range env {
			if strings.EqualFold(k, key) {
				c.Env[key] = true
				break
			}
		}
	}

	return c
}
