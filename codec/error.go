package codec

// Kind classifies an invocation failure. The set is fixed by the contract;
// callers receive the kind verbatim in error envelopes.
type Kind string

const (
	// KindMalformedInput marks an event channel payload that is not a valid
	// JSON mapping.
	KindMalformedInput Kind = "malformed_input"
	// KindMalformedOutput marks handler output that is not a valid JSON
	// mapping.
	KindMalformedOutput Kind = "malformed_output"
	// KindTimeout marks a handler that exceeded its deadline.
	KindTimeout Kind = "timeout"
	// KindHandlerError marks a handler that ran and signaled failure.
	KindHandlerError Kind = "handler_error"
	// KindConfigError marks malformed side-channel context data. It is
	// always recovered locally and never surfaces to callers.
	KindConfigError Kind = "config_error"
)

// Error is a classified codec or invocation failure. Messages are sanitized
// at construction: they never carry environment values, stack traces or
// filesystem paths.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}
