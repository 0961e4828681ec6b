// Package codec implements the event codec of the invocation contract:
// events and handler results are JSON mappings, encoded for the handler's
// input channel and decoded back from its output channel. The codec only
// cares that a payload is a valid JSON mapping; field shapes are the
// handler's concern.
package codec

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Event is one inbound payload: an opaque JSON-compatible mapping.
type Event map[string]interface{}

// Encode serializes an event for the handler's input channel. A nil event
// encodes as the empty mapping.
func Encode(e Event) ([]byte, error) {
	if e == nil {
		e = Event{}
	}
	return json.Marshal(e)
}

// DecodeInput parses an inbound event payload. Anything that is not a valid
// JSON mapping fails with KindMalformedInput; the orchestrator short-circuits
// such requests before the invoker is entered.
func DecodeInput(b []byte) (Event, *Error) {
	m, ok := decodeMapping(b)
	if !ok {
		return nil, &Error{Kind: KindMalformedInput, Message: "event is not a JSON mapping"}
	}
	return m, nil
}

// DecodeOutput parses a handler's output channel. Anything that is not a
// valid JSON mapping fails with KindMalformedOutput, which the invoker
// reports as an invocation failure rather than a process crash.
func DecodeOutput(b []byte) (map[string]interface{}, *Error) {
	m, ok := decodeMapping(b)
	if !ok {
		return nil, &Error{Kind: KindMalformedOutput, Message: "handler output is not a JSON mapping"}
	}
	return m, nil
}

func decodeMapping(b []byte) (map[string]interface{}, bool) {
	if !gjson.ValidBytes(b) || !gjson.ParseBytes(b).IsObject() {
		return nil, false
	}

	// UseNumber keeps numeric fields byte-exact through decode and
	// re-encode; plain Unmarshal would collapse them to float64.
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var m map[string]interface{}
	if err := dec.Decode(&m); err != nil {
		return nil, false
	}
	return m, true
}
