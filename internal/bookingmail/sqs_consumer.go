package bookingmail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/wolfman30/hvac-dispatch/pkg/logging"
)

const (
	defaultWaitSeconds   = 20
	maxWaitSeconds       = 20
	defaultBatchSize     = 5
	maxReceiveBatchSize  = 10
	deleteTimeoutSeconds = 5
)

// SQSAPI is the part of the SQS client the consumer uses.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// ConsumerOption customizes an SQSConsumer.
type ConsumerOption func(*SQSConsumer)

// WithWaitTime sets the SQS long-poll wait, capped at 20 seconds.
func WithWaitTime(d time.Duration) ConsumerOption {
	return func(c *SQSConsumer) {
		secs := int(d / time.Second)
		if secs < 0 {
			return
		}
		if secs > maxWaitSeconds {
			secs = maxWaitSeconds
		}
		c.waitSeconds = secs
	}
}

// WithBatchSize sets how many messages to fetch per poll, capped at 10.
func WithBatchSize(size int) ConsumerOption {
	return func(c *SQSConsumer) {
		if size <= 0 {
			return
		}
		if size > maxReceiveBatchSize {
			size = maxReceiveBatchSize
		}
		c.batchSize = size
	}
}

// SQSConsumer long-polls a queue of booking JSON bodies. Acknowledged and
// unprocessable messages are deleted; backend failures stay on the queue and
// come back after the visibility timeout.
type SQSConsumer struct {
	client      SQSAPI
	queueURL    string
	processor   DeliveryProcessor
	waitSeconds int
	batchSize   int
	logger      *logging.Logger
}

func NewSQSConsumer(client SQSAPI, queueURL string, processor DeliveryProcessor, logger *logging.Logger, opts ...ConsumerOption) *SQSConsumer {
	if client == nil {
		panic("bookingmail: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("bookingmail: SQS queueURL cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	c := &SQSConsumer{
		client:      client,
		queueURL:    queueURL,
		processor:   processor,
		waitSeconds: defaultWaitSeconds,
		batchSize:   defaultBatchSize,
		logger:      logger.Component("bookingmail-consumer"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run polls until ctx is cancelled.
func (c *SQSConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := c.PollOnce(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			c.logger.Error("failed to receive booking messages", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second
		c.logger.Debug("booking poll complete", "messages", n)
	}
}

// PollOnce receives one batch and handles every message in it.
func (c *SQSConsumer) PollOnce(ctx context.Context) (int, error) {
	out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: int32(c.batchSize),
		WaitTimeSeconds:     int32(c.waitSeconds),
	})
	if err != nil {
		return 0, fmt.Errorf("bookingmail: receive SQS messages: %w", err)
	}
	for _, msg := range out.Messages {
		c.handle(ctx, msg)
	}
	return len(out.Messages), nil
}

func (c *SQSConsumer) handle(ctx context.Context, msg types.Message) {
	id := aws.ToString(msg.MessageId)
	_, err := c.processor.Process(ctx, Delivery{ID: id, Data: []byte(aws.ToString(msg.Body))})
	if err != nil && !errors.Is(err, ErrUnprocessable) {
		c.logger.Warn("booking message left for redelivery", "error", err, "message_id", id)
		return
	}
	c.delete(ctx, aws.ToString(msg.ReceiptHandle))
}

func (c *SQSConsumer) delete(ctx context.Context, receiptHandle string) {
	if receiptHandle == "" {
		return
	}
	deleteCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deleteTimeoutSeconds*time.Second)
	defer cancel()

	_, err := c.client.DeleteMessage(deleteCtx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		c.logger.Error("failed to delete booking message", "error", err)
	}
}

// HandleSQSEvent processes a Lambda SQS batch and reports the records that
// should be retried as partial batch failures.
func HandleSQSEvent(ctx context.Context, processor DeliveryProcessor, evt events.SQSEvent) events.SQSEventResponse {
	var resp events.SQSEventResponse
	for _, record := range evt.Records {
		_, err := processor.Process(ctx, Delivery{ID: record.MessageId, Data: []byte(record.Body)})
		if err != nil && !errors.Is(err, ErrUnprocessable) {
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
	}
	return resp
}
