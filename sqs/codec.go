package sqs

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/Blauerdrache/fnserve/invoke"
)

// Envelope carries the queue-level routing fields of a record body, on top
// of the invocation envelope parsed by invoke.ParseEnvelope.
type Envelope struct {
	CorrelationID string
	ReplyTo       string
}

// ParseRecord splits a record body into the invocation request and the
// queue routing envelope.
func ParseRecord(body []byte) (*invoke.Request, *Envelope, error) {
	req, err := invoke.ParseEnvelope(body)
	if err != nil {
		return nil, nil, fmt.Errorf("sqs: %w", err)
	}

	doc := gjson.ParseBytes(body)
	envelope := &Envelope{
		CorrelationID: doc.Get("correlation_id").String(),
		ReplyTo:       doc.Get("reply_to").String(),
	}

	return req, envelope, nil
}

// reply is the response message shape published to reply queues.
type reply struct {
	CorrelationID string           `json:"correlation_id"`
	Response      *invoke.Response `json:"response"`
}

// MarshalReply renders the reply body for a response envelope.
func MarshalReply(correlationID string, resp *invoke.Response) ([]byte, error) {
	return json.Marshal(reply{
		CorrelationID: correlationID,
		Response:      resp,
	})
}

// UnmarshalReply parses a reply body. Used by the client listener.
func UnmarshalReply(body []byte) (string, *invoke.Response, error) {
	var r reply
	if err := json.Unmarshal(body, &r); err != nil {
		return "", nil, err
	}
	return r.CorrelationID, r.Response, nil
}
