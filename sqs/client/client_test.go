package client

import (
	"context"
	"sync"
	"testing"
	"time"

	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/tidwall/gjson"

	"github.com/Blauerdrache/fnserve/invoke"
	"github.com/Blauerdrache/fnserve/sqs"
)

// loopbackSQS pretends to be two queues: messages sent to the request queue
// produce a canned reply on the response queue.
type loopbackSQS struct {
	mu      sync.Mutex
	sent    []string
	replies []string
}

func (f *loopbackSQS) SendMessage(ctx context.Context, params *awssqs.SendMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body := *params.MessageBody
	f.sent = append(f.sent, body)

	doc := gjson.Parse(body)
	if doc.Get("reply_to").String() != "" {
		reply, _ := sqs.MarshalReply(doc.Get("correlation_id").String(), &invoke.Response{
			RequestID: doc.Get("request_id").String(),
			Payload:   map[string]interface{}{"message": "ok"},
		})
		f.replies = append(f.replies, string(reply))
	}
	return &awssqs.SendMessageOutput{}, nil
}

func (f *loopbackSQS) ReceiveMessage(ctx context.Context, params *awssqs.ReceiveMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := &awssqs.ReceiveMessageOutput{}
	for _, r := range f.replies {
		body := r
		handle := "handle"
		out.Messages = append(out.Messages, types.Message{Body: &body, ReceiptHandle: &handle})
	}
	f.replies = nil
	if len(out.Messages) == 0 {
		// Keep the poll loop from spinning.
		time.Sleep(10 * time.Millisecond)
	}
	return out, nil
}

func (f *loopbackSQS) DeleteMessage(ctx context.Context, params *awssqs.DeleteMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.DeleteMessageOutput, error) {
	return &awssqs.DeleteMessageOutput{}, nil
}

func TestCall(t *testing.T) {
	fake := &loopbackSQS{}
	c := NewClient(
		WithSQSClient(fake),
		WithRequestQueueURL("https://sqs.local/requests"),
		WithResponseQueueURL("https://sqs.local/replies"),
		WithDefaultTimeout(5*time.Second),
	)
	defer c.Close()

	resp, err := c.Call(context.Background(), "hello", []byte(`{"name": "World"}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Payload["message"] != "ok" {
		t.Fatalf("Payload = %v", resp.Payload)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.sent) != 1 {
		t.Fatalf("sent = %d", len(fake.sent))
	}
	doc := gjson.Parse(fake.sent[0])
	if doc.Get("function").String() != "hello" {
		t.Fatalf("function = %q", doc.Get("function").String())
	}
	if doc.Get("reply_to").String() != "https://sqs.local/replies" {
		t.Fatalf("reply_to = %q", doc.Get("reply_to").String())
	}
	if doc.Get("correlation_id").String() == "" {
		t.Fatalf("correlation_id missing: %s", fake.sent[0])
	}
}

func TestCallWithoutResponseQueue(t *testing.T) {
	c := NewClient(WithSQSClient(&loopbackSQS{}), WithRequestQueueURL("https://sqs.local/requests"))
	defer c.Close()

	if _, err := c.Call(context.Background(), "hello", nil); err == nil {
		t.Fatalf("Call without response queue succeeded")
	}
}

func TestSend(t *testing.T) {
	fake := &loopbackSQS{}
	c := NewClient(WithSQSClient(fake), WithRequestQueueURL("https://sqs.local/requests"))
	defer c.Close()

	if err := c.Send(context.Background(), "hello", nil); err != nil {
		t.Fatal(err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	doc := gjson.Parse(fake.sent[0])
	if doc.Get("event").Raw != `{}` {
		t.Fatalf("event = %s", doc.Get("event").Raw)
	}
	if doc.Get("reply_to").Exists() {
		t.Fatalf("fire-and-forget carried reply_to: %s", fake.sent[0])
	}
}

func TestCallAsync(t *testing.T) {
	fake := &loopbackSQS{}
	c := NewClient(
		WithSQSClient(fake),
		WithRequestQueueURL("https://sqs.local/requests"),
		WithResponseQueueURL("https://sqs.local/replies"),
	)
	defer c.Close()

	done := make(chan struct{})
	c.CallAsync(context.Background(), "hello", []byte(`{}`), func(resp *invoke.Response, err error) {
		if err != nil {
			t.Error(err)
		} else if resp.Payload["message"] != "ok" {
			t.Errorf("Payload = %v", resp.Payload)
		}
		close(done)
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("callback never fired")
	}
}
