package runner

import "github.com/Blauerdrache/fnserve/codec"

// State tracks an invocation through its lifecycle. Terminal states are
// final; the runner never retries.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateTimedOut  State = "timed_out"
)

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateTimedOut:
		return true
	}
	return false
}

// Result is the outcome of one handler execution. Exactly one of Response
// and Err is populated once the state is terminal.
type Result struct {
	State    State
	Response map[string]interface{}
	Err      *codec.Error

	// Stderr is the handler's captured error stream. Diagnostic only: it is
	// logged under debug mode and never echoed to callers.
	Stderr string
}

func succeeded(response map[string]interface{}) *Result {
	return &Result{State: StateSucceeded, Response: response}
}

func failed(kind codec.Kind, message string) *Result {
	return &Result{State: StateFailed, Err: &codec.Error{Kind: kind, Message: message}}
}

func timedOut(message string) *Result {
	return &Result{State: StateTimedOut, Err: &codec.Error{Kind: codec.KindTimeout, Message: message}}
}
