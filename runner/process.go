package runner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/Blauerdrache/fnserve/codec"
	"github.com/Blauerdrache/fnserve/fnctx"
)

// ProcessRuntime runs a handler as a child process: event on stdin, context
// through the FN_CONTEXT environment variable, result on stdout.
type ProcessRuntime struct {
	// Interpreter is the argv prefix for script handlers (e.g. python3).
	// Empty means the handler file is executed directly.
	Interpreter []string
}

func (r *ProcessRuntime) Execute(ctx context.Context, path string, event []byte, fnCtx fnctx.Context) *Result {
	ctxJSON, err := fnctx.EncodeSideChannel(fnCtx)
	if err != nil {
		// Side-channel failures are recovered, never surfaced: the handler
		// gets a fully-defaulted context instead.
		ctxJSON, _ = fnctx.EncodeSideChannel(fnctx.DecodeSideChannel(nil))
	}

	argv := append(append([]string{}, r.Interpreter...), path)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = bytes.NewReader(event)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// The handler sees a minimal environment: the side channel plus PATH and
	// HOME so interpreters and their caches resolve. Host environment state
	// stays on the host.
	cmd.Env = []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + os.Getenv("HOME"),
		fnctx.EnvContextKey + "=" + string(ctxJSON),
	}

	// The handler runs in its own process group so a deadline kill reaches
	// its children too (go run execs a compiled grandchild).
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return failed(codec.KindHandlerError, "failed to start handler")
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	// The completion signal races the deadline timer; whichever resolves
	// first wins and the loser's effect is discarded.
	var timeout <-chan time.Time
	if fnCtx.Deadline > 0 {
		timer := time.NewTimer(fnCtx.Deadline)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case err := <-done:
		return r.collect(err, &stdout, &stderr)
	case <-timeout:
		killGroup(cmd)
		<-done
		res := timedOut(fmt.Sprintf("handler exceeded deadline of %v", fnCtx.Deadline))
		res.Stderr = stderr.String()
		return res
	case <-ctx.Done():
		killGroup(cmd)
		<-done
		res := timedOut("invocation canceled before handler completed")
		res.Stderr = stderr.String()
		return res
	}
}

// killGroup terminates the handler's process group. Falls back to killing
// the direct child if the group signal fails.
func killGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		cmd.Process.Kill()
	}
}

// collect translates exit status and output into a terminal result.
// Output of a failed handler is discarded; output of a clean exit must
// decode to a mapping and is returned unmodified.
func (r *ProcessRuntime) collect(waitErr error, stdout, stderr *bytes.Buffer) *Result {
	if waitErr != nil {
		code := -1
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
		res := failed(codec.KindHandlerError, fmt.Sprintf("handler exited with status %d", code))
		res.Stderr = stderr.String()
		return res
	}

	response, cerr := codec.DecodeOutput(stdout.Bytes())
	if cerr != nil {
		res := &Result{State: StateFailed, Err: cerr, Stderr: stderr.String()}
		return res
	}

	res := succeeded(response)
	res.Stderr = stderr.String()
	return res
}
