package invoke

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/Blauerdrache/fnserve/codec"
	"github.com/Blauerdrache/fnserve/fnctx"
	"github.com/Blauerdrache/fnserve/registry"
)

var engine *Engine

// Serve runs the orchestrator behind the AWS Lambda runtime. Each Lambda
// payload is an invocation envelope (see ParseEnvelope).
func Serve(invokeOpts []Option, registryOpts []registry.Option, ctxOpts []fnctx.Option) {
	engine = NewEngine(invokeOpts, registryOpts, ctxOpts)
	lambda.Start(engine.Handle)
}

// Close stops the engine gracefully.
func Close() {
	if engine != nil {
		engine.Stop()
	}
}

// Handle adapts Invoke to a raw-payload Lambda handler. The response is
// always a well-formed envelope; a malformed payload maps to a
// malformed_input error response rather than a handler fault.
func (e *Engine) Handle(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := ParseEnvelope(payload)
	if err != nil {
		return errorResponse(string(codec.KindMalformedInput), "invocation envelope is not a JSON mapping").Marshal()
	}
	return e.Invoke(ctx, req).Marshal()
}
