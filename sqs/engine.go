package sqs

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	events "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/Blauerdrache/fnserve/codec"
	"github.com/Blauerdrache/fnserve/invoke"
)

// SQSClient is the subset of the SQS API the engine uses for replies.
type SQSClient interface {
	SendMessage(ctx context.Context, params *awssqs.SendMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *awssqs.ReceiveMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *awssqs.DeleteMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.DeleteMessageOutput, error)
}

// Engine consumes SQS event batches: each record body is an invocation
// envelope. Failed records are reported back as batch item failures so the
// queue redelivers only what failed.
type Engine struct {
	*Options
	invoker   *invoke.Engine
	running   atomic.Int32
	sqsClient SQSClient
}

func NewEngine(opts ...ServeOption) *Engine {
	bag := &serveOptionBag{}
	bag.apply(opts...)

	e := &Engine{
		Options: NewOptions(bag.sqs...),
		invoker: invoke.NewEngine(bag.invoke, bag.registry, bag.fnctx),
	}
	if e.Options.SQSClient != nil {
		e.sqsClient = e.Options.SQSClient
	} else if e.ReplyMode {
		cfg, err := config.LoadDefaultConfig(context.Background())
		if err != nil {
			panic(err)
		}
		e.sqsClient = awssqs.NewFromConfig(cfg)
	}
	e.running.Store(1)
	return e
}

func (e *Engine) Start() {
	e.running.Store(1)
}

func (e *Engine) Stop() {
	e.running.Store(0)
}

// HandleSQSMessagesWithoutResponse retries the whole batch on any failure.
func (e *Engine) HandleSQSMessagesWithoutResponse(ctx context.Context, ev events.SQSEvent) error {
	resp, err := e.handleSQSMessages(ctx, ev)
	if err != nil {
		return err
	}
	if len(resp.BatchItemFailures) > 0 {
		return fmt.Errorf("batch item failures: %d", len(resp.BatchItemFailures))
	}
	return nil
}

// HandleSQSMessagesWithResponse retries only the failed records.
func (e *Engine) HandleSQSMessagesWithResponse(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	return e.handleSQSMessages(ctx, ev)
}

func (e *Engine) Invoke(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	if e.PartialMode {
		return e.HandleSQSMessagesWithResponse(ctx, ev)
	}
	return events.SQSEventResponse{}, e.HandleSQSMessagesWithoutResponse(ctx, ev)
}

func (e *Engine) handleSQSMessages(ctx context.Context, ev events.SQSEvent) (resp events.SQSEventResponse, err error) {
	for _, msg := range ev.Records {
		if e.running.Load() == 0 {
			if e.DebugMode {
				log.Printf("[SQS] Engine stopped, message %s failed", msg.MessageId)
			}
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: msg.MessageId})
			continue
		}

		req, envelope, perr := ParseRecord([]byte(msg.Body))
		if perr != nil {
			if e.DebugMode {
				log.Printf("[SQS] Parse message %s body error: %v", msg.MessageId, perr)
			}
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: msg.MessageId})
			continue
		}

		if e.DebugMode {
			log.Printf("[SQS] Request: fn=%s correlation_id=%s", req.Function, envelope.CorrelationID)
		}

		result := e.invoker.Invoke(ctx, req)

		if e.ReplyMode && envelope.ReplyTo != "" {
			if rerr := e.reply(ctx, envelope, result); rerr != nil && e.DebugMode {
				log.Printf("[SQS] Reply for message %s error: %v", msg.MessageId, rerr)
			}
		}

		if result.Error != nil {
			if e.SuspendMode {
				return resp, &codec.Error{Kind: codec.Kind(result.Error.Kind), Message: result.Error.Message}
			}
			if e.DebugMode {
				log.Printf("[SQS] Dispatch message %s error: %s %s", msg.MessageId, result.Error.Kind, result.Error.Message)
			}
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: msg.MessageId})
			continue
		}
	}

	return resp, nil
}

// reply publishes the response envelope to the queue named by the request.
func (e *Engine) reply(ctx context.Context, envelope *Envelope, result *invoke.Response) error {
	if e.sqsClient == nil {
		return nil
	}

	body, err := MarshalReply(envelope.CorrelationID, result)
	if err != nil {
		return err
	}

	_, err = e.sqsClient.SendMessage(ctx, &awssqs.SendMessageInput{
		QueueUrl:    aws.String(envelope.ReplyTo),
		MessageBody: aws.String(string(body)),
	})
	return err
}
