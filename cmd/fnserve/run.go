package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Blauerdrache/fnserve/fnctx"
	"github.com/Blauerdrache/fnserve/invoke"
	"github.com/Blauerdrache/fnserve/registry"
)

var (
	runEvent   string
	runDir     string
	runTimeout time.Duration
	runDebug   bool
)

var runCmd = &cobra.Command{
	Use:   "run [function]",
	Short: "Run a function once with an event",
	Long: `Run invokes a single function and prints the response envelope.
The argument is either a registered function name (resolved against --dir)
or a path to a handler file. The event is taken from --event (raw JSON or
a file path), from stdin when piped, or defaults to an empty object.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		event, err := loadEvent(runEvent)
		if err != nil {
			return err
		}

		name := args[0]
		var registryOpts []registry.Option
		if st, err := os.Stat(name); err == nil && !st.IsDir() {
			path := name
			base := filepath.Base(path)
			name = strings.TrimSuffix(base, filepath.Ext(base))
			registryOpts = append(registryOpts, registry.WithStaticFunction(name, path))
		} else {
			registryOpts = append(registryOpts, registry.WithDir(runDir))
		}

		var invokeOpts []invoke.Option
		if runDebug {
			invokeOpts = append(invokeOpts, invoke.WithDebugMode(true))
		}

		var ctxOpts []fnctx.Option
		if runTimeout > 0 {
			ctxOpts = append(ctxOpts, fnctx.WithDefaultDeadline(runTimeout))
		}

		engine := invoke.NewEngine(invokeOpts, registryOpts, ctxOpts)
		defer engine.Stop()

		resp := engine.Invoke(context.Background(), &invoke.Request{
			Function: name,
			Event:    event,
			Meta:     fnctx.RequestMeta{RequestID: "req-" + uuid.NewString()},
			Tracing: fnctx.TracingState{
				TraceID: uuid.NewString(),
				SpanID:  uuid.NewString(),
			},
		})

		out, err := resp.Marshal()
		if err != nil {
			return err
		}
		fmt.Println(string(out))

		if resp.Error != nil {
			os.Exit(1)
		}
		return nil
	},
}

// loadEvent resolves the event payload: the --event value is a file path if
// one exists, raw JSON otherwise; with no flag, piped stdin is read, and a
// terminal falls back to an empty object.
func loadEvent(flag string) ([]byte, error) {
	if flag != "" {
		if _, err := os.Stat(flag); err == nil {
			b, err := os.ReadFile(flag)
			if err != nil {
				return nil, fmt.Errorf("read event file: %w", err)
			}
			return b, nil
		}
		return []byte(flag), nil
	}

	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read event from stdin: %w", err)
		}
		return b, nil
	}

	return []byte("{}"), nil
}

func init() {
	runCmd.Flags().StringVar(&runEvent, "event", "", "event JSON or a path to an event file")
	runCmd.Flags().StringVar(&runDir, "dir", "functions", "directory the function name is resolved against")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "execution deadline (default 30s)")
	runCmd.Flags().BoolVar(&runDebug, "debug", false, "log invocation lifecycle")
	rootCmd.AddCommand(runCmd)
}
