package server

import (
	"testing"
	"time"

	"github.com/Blauerdrache/fnserve/fnctx"
	"github.com/Blauerdrache/fnserve/http"
)

func TestWithServeConfig(t *testing.T) {
	yaml := []byte(
		"server: sqs\n" +
			"\n" +
			"http:\n" +
			"  address: \":9090\"\n" +
			"  cors: true\n" +
			"\n" +
			"sqs:\n" +
			"  reply: true\n" +
			"  partialRetry: true\n" +
			"\n" +
			"registry:\n" +
			"  alias:\n" +
			"    - src: hi\n" +
			"      dst: hello\n" +
			"\n" +
			"context:\n" +
			"  defaultDeadline: \"12s\"\n" +
			"\n" +
			"invoke:\n" +
			"  debug: true\n",
	)

	options := &Options{}
	WithServeConfig(yaml).Apply(options)

	if options.ServerType != "sqs" {
		t.Fatalf("ServerType = %q", options.ServerType)
	}
	if len(options.Http) != 1 || len(options.Sqs) != 1 || len(options.Registry) != 1 ||
		len(options.Fnctx) != 1 || len(options.Invoke) != 1 {
		t.Fatalf("option groups = %d %d %d %d %d",
			len(options.Http), len(options.Sqs), len(options.Registry), len(options.Fnctx), len(options.Invoke))
	}

	httpOpts := http.NewOptions(options.Http...)
	if httpOpts.Address != ":9090" || !httpOpts.CorsMode {
		t.Fatalf("http options = %+v", httpOpts)
	}

	ctxOpts := fnctx.NewOptions(options.Fnctx...)
	if ctxOpts.DefaultDeadline != 12*time.Second {
		t.Fatalf("DefaultDeadline = %v", ctxOpts.DefaultDeadline)
	}
}

func TestWithServeConfigSectionsOptional(t *testing.T) {
	options := &Options{}
	WithServeConfig([]byte("server: http\n")).Apply(options)

	if options.ServerType != "http" {
		t.Fatalf("ServerType = %q", options.ServerType)
	}
	if len(options.Http)+len(options.Sqs)+len(options.Registry)+len(options.Fnctx)+len(options.Invoke) != 0 {
		t.Fatalf("unexpected option groups: %+v", options)
	}
}

func TestHttpServeOptionsFlattensGroups(t *testing.T) {
	options := &Options{}
	WithServeConfig([]byte(
		"http:\n  address: \":7070\"\n" +
			"registry:\n  dir: \"\"\n" +
			"context:\n  defaultDeadline: \"5s\"\n",
	)).Apply(options)

	serveOpts := options.HttpServeOptions()
	if len(serveOpts) != 3 {
		t.Fatalf("serve options = %d", len(serveOpts))
	}
}

func TestWithServerTypeOverrides(t *testing.T) {
	options := &Options{}
	WithServeConfig([]byte("server: http\n")).Apply(options)
	WithServerType("lambda").Apply(options)

	if options.ServerType != "lambda" {
		t.Fatalf("ServerType = %q", options.ServerType)
	}
}

func TestWithServeConfigInvalidPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("no panic on invalid yaml")
		}
	}()
	WithServeConfig([]byte("server: ["))
}
