package fnctx

import (
	"strings"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Unix(1700000000, 500000000)
}

func TestBuildDefaults(t *testing.T) {
	b := NewBuilder(WithClock(fixedClock))

	c := b.Build(RequestMeta{}, TracingState{}, nil, nil)

	if c.RequestID != UnknownValue {
		t.Fatalf("RequestID = %q", c.RequestID)
	}
	if c.Tracing.TraceID != UnknownValue {
		t.Fatalf("TraceID = %q", c.Tracing.TraceID)
	}
	if c.Tracing.SpanID != UnknownValue {
		t.Fatalf("SpanID = %q", c.Tracing.SpanID)
	}
	if c.Tracing.ParentID != "" {
		t.Fatalf("ParentID = %q", c.Tracing.ParentID)
	}
	if c.Deadline != 30*time.Second {
		t.Fatalf("Deadline = %v", c.Deadline)
	}
	if c.Timestamp != epochSeconds(fixedClock()) {
		t.Fatalf("Timestamp = %v", c.Timestamp)
	}
	if c.Parameters == nil || len(c.Parameters) != 0 {
		t.Fatalf("Parameters = %v", c.Parameters)
	}
	if c.Env == nil || len(c.Env) != 0 {
		t.Fatalf("Env = %v", c.Env)
	}
}

func TestBuildTracingFieldsDefaultIndependently(t *testing.T) {
	b := NewBuilder(WithClock(fixedClock))

	c := b.Build(RequestMeta{RequestID: "req-1"}, TracingState{TraceID: "trace-1"}, nil, nil)

	if c.Tracing.TraceID != "trace-1" {
		t.Fatalf("TraceID = %q", c.Tracing.TraceID)
	}
	if c.Tracing.SpanID != UnknownValue {
		t.Fatalf("SpanID = %q, want default", c.Tracing.SpanID)
	}

	c = b.Build(RequestMeta{}, TracingState{SpanID: "span-1"}, nil, nil)
	if c.Tracing.TraceID != UnknownValue {
		t.Fatalf("TraceID = %q, want default", c.Tracing.TraceID)
	}
	if c.Tracing.SpanID != "span-1" {
		t.Fatalf("SpanID = %q", c.Tracing.SpanID)
	}
}

func TestBuildEnvPresenceFlagsOnly(t *testing.T) {
	b := NewBuilder(WithClock(fixedClock))

	env := Snapshot{
		"X-API-Key":     "super-secret-value",
		"Authorization": "",
		"X-Internal":    "not-allow-listed",
	}

	c := b.Build(RequestMeta{}, TracingState{}, nil, env)

	if !c.Env["X-API-Key"] {
		t.Fatalf("X-API-Key flag missing")
	}
	// An empty value still counts as present.
	if !c.Env["Authorization"] {
		t.Fatalf("Authorization flag missing")
	}
	if _, ok := c.Env["X-Internal"]; ok {
		t.Fatalf("non-allow-listed key leaked into context")
	}

	// The snapshot values must not appear anywhere in the context.
	b2, err := EncodeSideChannel(c)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b2), "super-secret-value") {
		t.Fatalf("env value leaked into side channel: %s", b2)
	}
}

func TestBuildEnvMatchIsCaseInsensitive(t *testing.T) {
	b := NewBuilder(WithClock(fixedClock))

	// HTTP front doors hand over canonicalized header keys.
	c := b.Build(RequestMeta{}, TracingState{}, nil, Snapshot{"X-Api-Key": "v"})

	if !c.Env["X-API-Key"] {
		t.Fatalf("canonicalized header key did not match allow list: %v", c.Env)
	}
}

func TestBuildCustomAllowList(t *testing.T) {
	b := NewBuilder(
		WithClock(fixedClock),
		WithAllowedEnvKeys("X-Tenant"),
		WithEnvKey("X-Team"),
	)

	c := b.Build(RequestMeta{}, TracingState{}, nil, Snapshot{
		"X-Tenant":  "a",
		"X-Team":    "b",
		"X-API-Key": "c",
	})

	if !c.Env["X-Tenant"] || !c.Env["X-Team"] {
		t.Fatalf("allow-listed keys missing: %v", c.Env)
	}
	if _, ok := c.Env["X-API-Key"]; ok {
		t.Fatalf("replaced allow list still admits X-API-Key")
	}
}

func TestBuildParametersCopied(t *testing.T) {
	b := NewBuilder(WithClock(fixedClock))

	params := map[string]string{"name": "World"}
	c := b.Build(RequestMeta{}, TracingState{}, params, nil)

	params["name"] = "mutated"
	if c.Parameters["name"] != "World" {
		t.Fatalf("Parameters aliased caller map: %v", c.Parameters)
	}
}

func TestHasEnv(t *testing.T) {
	c := Context{Env: map[string]bool{"X-API-Key": true}}
	if !c.HasEnv("X-API-Key") {
		t.Fatalf("HasEnv(X-API-Key) = false")
	}
	if c.HasEnv("Authorization") {
		t.Fatalf("HasEnv(Authorization) = true")
	}
}
