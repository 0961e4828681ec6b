package invoke

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/Blauerdrache/fnserve/codec"
	"github.com/Blauerdrache/fnserve/fnctx"
	"github.com/Blauerdrache/fnserve/registry"
	"github.com/Blauerdrache/fnserve/runner"
)

// Engine is the invocation orchestrator: it builds the context, validates
// the event, drives the runner and normalizes the outcome into a Response.
type Engine struct {
	*Options
	*registry.Registry
	builder *fnctx.Builder
	running atomic.Int32
}

// NewEngine creates a new engine. It panics if the function registry cannot
// be built, matching the construction-time failure policy of the other
// engines.
func NewEngine(invokeOpts []Option, registryOpts []registry.Option, ctxOpts []fnctx.Option) *Engine {
	reg, err := registry.NewRegistry(registryOpts...)
	if err != nil {
		panic(fmt.Errorf("invoke: %w", err))
	}

	e := &Engine{
		Options:  NewOptions(invokeOpts...),
		Registry: reg,
		builder:  fnctx.NewBuilder(ctxOpts...),
	}
	e.running.Store(1)
	return e
}

func (e *Engine) Start() {
	e.running.Store(1)
}

func (e *Engine) Stop() {
	e.running.Store(0)
}

func (e *Engine) IsRunning() bool {
	return e.running.Load() == 1
}

// Builder exposes the context builder for front doors that need to build a
// context mirror without running a handler.
func (e *Engine) Builder() *fnctx.Builder {
	return e.builder
}

// Invoke runs one invocation end to end. It always returns a well-formed
// response envelope; inner failures are mapped to sanitized error bodies
// and never escape as faults.
func (e *Engine) Invoke(ctx context.Context, req *Request) *Response {
	if e.running.Load() == 0 {
		return errorResponse(KindUnavailable, "engine is stopped")
	}

	// Event validation short-circuits before the runner is entered. The
	// validated bytes are handed to the runner verbatim; a decode/re-encode
	// cycle would alter integers beyond float64 precision.
	if _, cerr := codec.DecodeInput(req.Event); cerr != nil {
		if e.DebugMode {
			log.Printf("[Invoke] Reject event for %q: %v", req.Function, cerr)
		}
		return errorResponse(string(cerr.Kind), cerr.Message)
	}

	fnCtx := e.builder.Build(req.Meta, req.Tracing, req.Parameters, req.Env)
	if req.Deadline > 0 && req.Deadline < fnCtx.Deadline {
		fnCtx.Deadline = req.Deadline
	}

	fn, err := e.Registry.Get(req.Function)
	if err != nil {
		if e.DebugMode {
			log.Printf("[Invoke] %v", err)
		}
		return errorResponse(KindNotFound, fmt.Sprintf("function not found: %s", req.Function))
	}

	payload := req.Event

	if e.DebugMode {
		log.Printf("[Invoke] Request: fn=%s request_id=%s trace_id=%s", fn.Name, fnCtx.RequestID, fnCtx.Tracing.TraceID)
	}

	result := e.run(ctx, fn, payload, fnCtx)

	if result.Stderr != "" && e.DebugMode {
		log.Printf("[Invoke] Handler stderr: fn=%s %s", fn.Name, result.Stderr)
	}

	if result.State != runner.StateSucceeded {
		if e.DebugMode {
			log.Printf("[Invoke] Error: fn=%s %v", fn.Name, result.Err)
		}
		resp := errorResponse(string(result.Err.Kind), result.Err.Message)
		resp.RequestID = fnCtx.RequestID
		resp.TraceID = fnCtx.Tracing.TraceID
		return resp
	}

	if e.DebugMode {
		log.Printf("[Invoke] Succeeded: fn=%s request_id=%s", fn.Name, fnCtx.RequestID)
	}

	return &Response{
		RequestID: fnCtx.RequestID,
		TraceID:   fnCtx.Tracing.TraceID,
		Payload:   result.Response,
	}
}

// run drives the runner with panic recovery. A panicking runtime is
// reported as a handler error, not a crash of the platform surface.
func (e *Engine) run(ctx context.Context, fn registry.Function, payload []byte, fnCtx fnctx.Context) (result *runner.Result) {
	defer func() {
		if r := recover(); r != nil {
			if e.DebugMode {
				log.Printf("[Invoke] Recovered from panic: fn=%s %v", fn.Name, r)
			}
			result = &runner.Result{
				State: runner.StateFailed,
				Err:   &codec.Error{Kind: codec.KindHandlerError, Message: "handler execution panicked"},
			}
		}
	}()

	rt := e.Runtime
	if rt == nil {
		rt = runner.ForPath(fn.Path)
	}
	return rt.Execute(ctx, fn.Path, payload, fnCtx)
}
