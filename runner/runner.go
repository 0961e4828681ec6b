// Package runner owns the lifecycle of a single invocation: it launches a
// handler process, delivers the event and context, enforces the deadline and
// collects exit status plus output. Each invocation gets its own process and
// buffers; nothing is shared between concurrent invocations.
package runner

import (
	"context"
	"path/filepath"

	"github.com/Blauerdrache/fnserve/fnctx"
)

// Runtime executes one handler program. Implementations must be safe for
// concurrent use; every Execute call owns an independent execution unit.
type Runtime interface {
	Execute(ctx context.Context, path string, event []byte, fnCtx fnctx.Context) *Result
}

// interpreters maps handler file extensions to the argv prefix used to run
// them. Files with no mapping are executed directly.
var interpreters = map[string][]string{
	".py": {"python3"},
	".sh": {"sh"},
	".js": {"node"},
	".go": {"go", "run"},
}

// ForPath selects the runtime for a handler program by file extension.
func ForPath(path string) Runtime {
	if argv, ok := interpreters[filepath.Ext(path)]; ok {
		return &ProcessRuntime{Interpreter: argv}
	}
	return &ProcessRuntime{}
}
