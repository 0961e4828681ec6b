package http

import (
	"testing"
	"time"
)

func TestWithConfig(t *testing.T) {
	yaml := []byte(
		"http:\n" +
			"  address: \":9090\"\n" +
			"  debug: true\n" +
			"  cors: true\n" +
			"  maxConcurrent: 7\n" +
			"  requestTimeout: \"12s\"\n" +
			"  staticLink:\n" +
			"    - srcPath: /shortcut\n" +
			"      dstPath: /fn/hello\n" +
			"  prefixLink:\n" +
			"    - srcPrefix: /api/\n" +
			"      dstPrefix: /fn/\n",
	)

	o := NewOptions(WithConfig(yaml))
	if o.Address != ":9090" {
		t.Fatalf("Address = %q", o.Address)
	}
	if !o.DebugMode || !o.CorsMode {
		t.Fatalf("modes = %v %v", o.DebugMode, o.CorsMode)
	}
	if o.MaxConcurrent != 7 {
		t.Fatalf("MaxConcurrent = %d", o.MaxConcurrent)
	}
	if o.RequestTimeout != 12*time.Second {
		t.Fatalf("RequestTimeout = %v", o.RequestTimeout)
	}
	if o.StaticLinkMap["/shortcut"] != "/fn/hello" {
		t.Fatalf("StaticLinkMap = %v", o.StaticLinkMap)
	}
	if o.PrefixLinkMap["/api/"] != "/fn/" {
		t.Fatalf("PrefixLinkMap = %v", o.PrefixLinkMap)
	}
}

func TestWithConfigDefaultsSurvive(t *testing.T) {
	o := NewOptions(WithConfig([]byte("http:\n  debug: true\n")))
	if o.Address != ":8080" {
		t.Fatalf("Address = %q", o.Address)
	}
	if o.MaxConcurrent != 100 {
		t.Fatalf("MaxConcurrent = %d", o.MaxConcurrent)
	}
}
