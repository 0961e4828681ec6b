package server

import (
	"github.com/Blauerdrache/fnserve/http"
	"github.com/Blauerdrache/fnserve/invoke"
	"github.com/Blauerdrache/fnserve/sqs"
)

// Serve starts the configured front door: a local HTTP server by default,
// or the Lambda-hosted SQS / direct-invocation engines.
func Serve(opts ...Option) error {
	options := &Options{}
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(options)
		}
	}

	switch options.ServerType {
	case "sqs":
		sqs.Serve(options.Sqs...)
		return nil
	case "lambda":
		invoke.Serve(options.Invoke, options.Registry, options.Fnctx)
		return nil
	case "http":
		fallthrough
	default:
		return http.Serve(options.HttpServeOptions()...)
	}
}

func Close() error {
	if err := http.Close(); err != nil {
		return err
	}
	sqs.Close()
	invoke.Close()
	return nil
}
