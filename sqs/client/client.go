package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"

	"github.com/Blauerdrache/fnserve/invoke"
	"github.com/Blauerdrache/fnserve/sqs"
)

// Client enqueues invocation envelopes and, when a response queue is
// configured, listens for reply envelopes and matches them by correlation
// id.
type Client struct {
	*Options
	pendingRequests sync.Map // correlationId -> chan *invoke.Response
	stopChan        chan struct{}
	wg              sync.WaitGroup
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		Options:  NewOptions(opts...),
		stopChan: make(chan struct{}),
	}

	if c.ResponseQueueURL != "" {
		c.wg.Add(1)
		go c.listener()
	}

	return c
}

func (c *Client) Close() {
	close(c.stopChan)
	c.wg.Wait()
}

func (c *Client) listener() {
	defer c.wg.Done()
	for {
		select {
		case <-c.stopChan:
			return
		default:
			output, err := c.SQSClient.ReceiveMessage(context.Background(), &awssqs.ReceiveMessageInput{
				QueueUrl:            &c.ResponseQueueURL,
				MaxNumberOfMessages: 10,
				WaitTimeSeconds:     20,
			})
			if err != nil {
				time.Sleep(time.Second)
				continue
			}

			for _, msg := range output.Messages {
				c.handleIncomingMessage(msg)
				c.SQSClient.DeleteMessage(context.Background(), &awssqs.DeleteMessageInput{
					QueueUrl:      &c.ResponseQueueURL,
					ReceiptHandle: msg.ReceiptHandle,
				})
			}
		}
	}
}

func (c *Client) handleIncomingMessage(msg types.Message) {
	if msg.Body == nil {
		return
	}

	correlationID, resp, err := sqs.UnmarshalReply([]byte(*msg.Body))
	if err != nil {
		return
	}

	if ch, ok := c.pendingRequests.Load(correlationID); ok {
		ch.(chan *invoke.Response) <- resp
	}
}

// envelope is the request message shape; it extends the invocation envelope
// with the queue routing fields.
type envelope struct {
	Function      string                 `json:"function"`
	Event         json.RawMessage        `json:"event,omitempty"`
	RequestID     string                 `json:"request_id,omitempty"`
	Parameters    map[string]string      `json:"parameters,omitempty"`
	Tracing       map[string]interface{} `json:"tracing,omitempty"`
	DeadlineMs    int64                  `json:"deadline_ms,omitempty"`
	CorrelationID string                 `json:"correlation_id"`
	ReplyTo       string                 `json:"reply_to,omitempty"`
}

// Call enqueues one invocation and waits for its reply. It requires a
// response queue; without one, use Send.
func (c *Client) Call(ctx context.Context, function string, event []byte) (*invoke.Response, error) {
	if c.ResponseQueueURL == "" {
		return nil, fmt.Errorf("sqs client: no response queue configured")
	}

	correlationID := uuid.New().String()

	respChan := make(chan *invoke.Response, 1)
	c.pendingRequests.Store(correlationID, respChan)
	defer c.pendingRequests.Delete(correlationID)

	if err := c.send(ctx, function, event, correlationID, c.ResponseQueueURL); err != nil {
		return nil, err
	}

	timeout := c.DefaultTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	select {
	case resp := <-respChan:
		return resp, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("request timeout")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Send enqueues one fire-and-forget invocation.
func (c *Client) Send(ctx context.Context, function string, event []byte) error {
	return c.send(ctx, function, event, uuid.New().String(), "")
}

// CallAsync runs Call on a goroutine and hands the outcome to callback.
func (c *Client) CallAsync(ctx context.Context, function string, event []byte, callback func(*invoke.Response, error)) {
	go func() {
		resp, err := c.Call(ctx, function, event)
		if callback != nil {
			callback(resp, err)
		}
	}()
}

func (c *Client) send(ctx context.Context, function string, event []byte, correlationID, replyTo string) error {
	env := envelope{
		Function:      function,
		Event:         json.RawMessage(event),
		RequestID:     "req-" + correlationID,
		CorrelationID: correlationID,
		ReplyTo:       replyTo,
	}
	if len(event) == 0 {
		env.Event = json.RawMessage(`{}`)
	}

	body, err := json.Marshal(env)
	if err != nil {
		return err
	}

	_, err = c.SQSClient.SendMessage(ctx, &awssqs.SendMessageInput{
		QueueUrl:    &c.RequestQueueURL,
		MessageBody: aws.String(string(body)),
	})
	return err
}
