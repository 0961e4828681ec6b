package dev

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Blauerdrache/fnserve/http"
)

func writeHandler(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\nprintf '{}'\n"), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestNewEngineRegistersHandlers(t *testing.T) {
	dir := t.TempDir()
	writeHandler(t, dir, "hello.py")

	e := NewEngine(WithDir(dir))
	names := e.httpEngine.Invoker().Names()
	if len(names) != 1 || names[0] != "hello" {
		t.Fatalf("Names() = %v", names)
	}
}

func TestHotReload(t *testing.T) {
	dir := t.TempDir()
	writeHandler(t, dir, "hello.py")

	e := NewEngine(
		WithDir(dir),
		WithDebounce(20*time.Millisecond),
		WithServeOptions(http.WithAddress("127.0.0.1:0")),
	)

	go e.Start()
	defer e.Stop()

	// Wait for the watcher goroutine to come up.
	deadline := time.After(5 * time.Second)
	for !e.IsRunning() {
		select {
		case <-deadline:
			t.Fatalf("engine never started")
		case <-time.After(5 * time.Millisecond):
		}
	}
	time.Sleep(50 * time.Millisecond)

	writeHandler(t, dir, "added.py")

	for {
		select {
		case <-deadline:
			t.Fatalf("reload never picked up the new handler: %v", e.httpEngine.Invoker().Names())
		case <-time.After(10 * time.Millisecond):
		}
		names := e.httpEngine.Invoker().Names()
		if len(names) == 2 {
			return
		}
	}
}

func TestWithConfig(t *testing.T) {
	yaml := []byte(
		"dev:\n" +
			"  dir: handlers\n" +
			"  debounce: \"1s\"\n" +
			"  debug: true\n",
	)

	o := NewOptions(WithConfig(yaml))
	if o.Dir != "handlers" {
		t.Fatalf("Dir = %q", o.Dir)
	}
	if o.Debounce != time.Second {
		t.Fatalf("Debounce = %v", o.Debounce)
	}
	if !o.DebugMode {
		t.Fatalf("DebugMode = false")
	}
}
