package runner

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/Blauerdrache/fnserve/codec"
	"github.com/Blauerdrache/fnserve/fnctx"
)

// writeScript drops a shell handler into a temp dir. Shell keeps the tests
// free of interpreter dependencies.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "handler.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func testContext() fnctx.Context {
	b := fnctx.NewBuilder()
	return b.Build(fnctx.RequestMeta{RequestID: "req-1"}, fnctx.TracingState{TraceID: "trace-1", SpanID: "span-1"}, nil, nil)
}

func TestExecuteSuccess(t *testing.T) {
	path := writeScript(t, `cat > /dev/null
printf '{"message": "Hello World!"}'
`)

	res := ForPath(path).Execute(context.Background(), path, []byte(`{"name": "World"}`), testContext())

	if res.State != StateSucceeded {
		t.Fatalf("State = %q, Err = %v, Stderr = %q", res.State, res.Err, res.Stderr)
	}
	if res.Response["message"] != "Hello World!" {
		t.Fatalf("Response = %v", res.Response)
	}
}

func TestExecuteEventOnStdin(t *testing.T) {
	path := writeScript(t, `name=$(sed -n 's/.*"name"[[:space:]]*:[[:space:]]*"\([^"]*\)".*/\1/p')
printf '{"message": "Hello %s!"}' "$name"
`)

	res := ForPath(path).Execute(context.Background(), path, []byte(`{"name": "Gopher"}`), testContext())

	if res.State != StateSucceeded {
		t.Fatalf("State = %q, Err = %v", res.State, res.Err)
	}
	if res.Response["message"] != "Hello Gopher!" {
		t.Fatalf("Response = %v", res.Response)
	}
}

func TestExecuteContextInEnv(t *testing.T) {
	path := writeScript(t, `cat > /dev/null
printf '{"ctx": %s}' "${FN_CONTEXT:-null}"
`)

	res := ForPath(path).Execute(context.Background(), path, []byte(`{}`), testContext())

	if res.State != StateSucceeded {
		t.Fatalf("State = %q, Err = %v", res.State, res.Err)
	}
	ctxMap, ok := res.Response["ctx"].(map[string]interface{})
	if !ok {
		t.Fatalf("ctx = %T", res.Response["ctx"])
	}
	if ctxMap["request_id"] != "req-1" {
		t.Fatalf("request_id = %v", ctxMap["request_id"])
	}
}

func TestExecuteNonZeroExit(t *testing.T) {
	path := writeScript(t, `cat > /dev/null
printf '{"partial": true}'
echo "boom" >&2
exit 3
`)

	res := ForPath(path).Execute(context.Background(), path, []byte(`{}`), testContext())

	if res.State != StateFailed {
		t.Fatalf("State = %q", res.State)
	}
	if res.Err == nil || res.Err.Kind != codec.KindHandlerError {
		t.Fatalf("Err = %v", res.Err)
	}
	if !strings.Contains(res.Err.Message, "status 3") {
		t.Fatalf("Message = %q", res.Err.Message)
	}
	// Output from a failed handler is discarded.
	if res.Response != nil {
		t.Fatalf("Response = %v", res.Response)
	}
	if !strings.Contains(res.Stderr, "boom") {
		t.Fatalf("Stderr = %q", res.Stderr)
	}
}

func TestExecuteMalformedOutput(t *testing.T) {
	path := writeScript(t, `cat > /dev/null
echo "this is not json"
`)

	res := ForPath(path).Execute(context.Background(), path, []byte(`{}`), testContext())

	if res.State != StateFailed {
		t.Fatalf("State = %q", res.State)
	}
	if res.Err == nil || res.Err.Kind != codec.KindMalformedOutput {
		t.Fatalf("Err = %v", res.Err)
	}
}

func TestExecuteTimeout(t *testing.T) {
	path := writeScript(t, `cat > /dev/null
printf '{"partial": true}'
sleep 10
`)

	fnCtx := testContext()
	fnCtx.Deadline = 100 * time.Millisecond

	start := time.Now()
	res := ForPath(path).Execute(context.Background(), path, []byte(`{}`), fnCtx)
	elapsed := time.Since(start)

	if res.State != StateTimedOut {
		t.Fatalf("State = %q", res.State)
	}
	if res.Err == nil || res.Err.Kind != codec.KindTimeout {
		t.Fatalf("Err = %v", res.Err)
	}
	// Partial output written before the kill is discarded.
	if res.Response != nil {
		t.Fatalf("Response = %v", res.Response)
	}
	if elapsed > 5*time.Second {
		t.Fatalf("timeout not enforced, took %v", elapsed)
	}
}

func TestTimeoutKillsHandlerChildren(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "child.pid")
	path := writeScript(t, `cat > /dev/null
sleep 30 &
echo $! > `+pidFile+`
wait
`)

	fnCtx := testContext()
	fnCtx.Deadline = 200 * time.Millisecond

	res := ForPath(path).Execute(context.Background(), path, []byte(`{}`), fnCtx)
	if res.State != StateTimedOut {
		t.Fatalf("State = %q", res.State)
	}

	b, err := os.ReadFile(pidFile)
	if err != nil {
		t.Fatal(err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		t.Fatalf("pid file held %q: %v", b, err)
	}

	// The background sleep shares the handler's process group, so the
	// deadline kill must reach it too.
	deadline := time.Now().Add(2 * time.Second)
	for syscall.Kill(pid, 0) == nil {
		if time.Now().After(deadline) {
			t.Fatalf("background child %d survived the deadline kill", pid)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestExecuteCanceled(t *testing.T) {
	path := writeScript(t, `cat > /dev/null
sleep 10
`)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	res := ForPath(path).Execute(ctx, path, []byte(`{}`), testContext())
	if res.State != StateTimedOut {
		t.Fatalf("State = %q", res.State)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	res := (&ProcessRuntime{}).Execute(context.Background(), filepath.Join(t.TempDir(), "absent"), []byte(`{}`), testContext())
	if res.State != StateFailed {
		t.Fatalf("State = %q", res.State)
	}
	if res.Err == nil || res.Err.Kind != codec.KindHandlerError {
		t.Fatalf("Err = %v", res.Err)
	}
}

func TestExecuteConcurrentIsolation(t *testing.T) {
	path := writeScript(t, `id=$(sed -n 's/.*"id"[[:space:]]*:[[:space:]]*"\([^"]*\)".*/\1/p')
printf '{"id": "%s"}' "$id"
`)

	var wg sync.WaitGroup
	const n = 8
	results := make([]*Result, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			event := []byte(`{"id": "worker-` + string(rune('a'+i)) + `"}`)
			results[i] = ForPath(path).Execute(context.Background(), path, event, testContext())
		}(i)
	}
	wg.Wait()

	for i, res := range results {
		if res.State != StateSucceeded {
			t.Fatalf("worker %d: State = %q, Err = %v", i, res.State, res.Err)
		}
		want := "worker-" + string(rune('a'+i))
		if res.Response["id"] != want {
			t.Fatalf("worker %d: id = %v, want %q", i, res.Response["id"], want)
		}
	}
}

func TestForPathSelectsInterpreter(t *testing.T) {
	rt := ForPath("handlers/hello.py").(*ProcessRuntime)
	if len(rt.Interpreter) != 1 || rt.Interpreter[0] != "python3" {
		t.Fatalf("Interpreter = %v", rt.Interpreter)
	}

	rt = ForPath("handlers/hello").(*ProcessRuntime)
	if len(rt.Interpreter) != 0 {
		t.Fatalf("Interpreter = %v", rt.Interpreter)
	}
}

func TestStateTerminal(t *testing.T) {
	for _, s := range []State{StateSucceeded, StateFailed, StateTimedOut} {
		if !s.Terminal() {
			t.Fatalf("%q not terminal", s)
		}
	}
	for _, s := range []State{StatePending, StateRunning} {
		if s.Terminal() {
			t.Fatalf("%q terminal", s)
		}
	}
}
