package bookingmail

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/hvac-dispatch/internal/secrets"
)

type fakeSQS struct {
	mu         sync.Mutex
	batches    [][]types.Message
	receiveErr error
	inputs     []*sqs.ReceiveMessageInput
	deleted    []string
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, in)
	if f.receiveErr != nil {
		return nil, f.receiveErr
	}
	if len(f.batches) == 0 {
		return &sqs.ReceiveMessageOutput{}, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return &sqs.ReceiveMessageOutput{Messages: batch}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, aws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func (f *fakeSQS) deletedHandles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func sqsMessage(id, body string) types.Message {
	return types.Message{
		MessageId:     aws.String(id),
		Body:          aws.String(body),
		ReceiptHandle: aws.String("rh-" + id),
	}
}

func TestSQSConsumerPollOnce(t *testing.T) {
	sender := &recordingSender{}
	proc := newTestProcessor(t, KindUser, &fakeBuilder{sender: sender}, secrets.StaticStore{"mail/credential": []byte("key-1")})
	client := &fakeSQS{batches: [][]types.Message{{
		sqsMessage("ok", bookingJSON),
		sqsMessage("bad", `{"name":`),
	}}}
	consumer := NewSQSConsumer(client, "https://sqs.local/booking", proc, quietLogger(), WithBatchSize(50), WithWaitTime(time.Minute))

	n, err := consumer.PollOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{"rh-ok", "rh-bad"}, client.deletedHandles())
	assert.Len(t, sender.messages(), 1)
	require.Len(t, client.inputs, 1)
	assert.Equal(t, int32(10), client.inputs[0].MaxNumberOfMessages)
	assert.Equal(t, int32(20), client.inputs[0].WaitTimeSeconds)
}

func TestSQSConsumerLeavesBackendFailures(t *testing.T) {
	proc := newTestProcessor(t, KindUser, &fakeBuilder{sender: &recordingSender{}}, secrets.StaticStore{})
	client := &fakeSQS{batches: [][]types.Message{{sqsMessage("m-1", bookingJSON)}}}
	consumer := NewSQSConsumer(client, "https://sqs.local/booking", proc, quietLogger())

	_, err := consumer.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, client.deletedHandles())
}

func TestSQSConsumerReceiveError(t *testing.T) {
	proc := newTestProcessor(t, KindUser, &fakeBuilder{sender: &recordingSender{}}, secrets.StaticStore{})
	client := &fakeSQS{receiveErr: errors.New("throttled")}
	consumer := NewSQSConsumer(client, "https://sqs.local/booking", proc, quietLogger())

	_, err := consumer.PollOnce(context.Background())
	assert.Error(t, err)
}

func TestSQSConsumerRunStopsOnCancel(t *testing.T) {
	sender := &recordingSender{}
	proc := newTestProcessor(t, KindUser, &fakeBuilder{sender: sender}, secrets.StaticStore{"mail/credential": []byte("key-1")})
	client := &fakeSQS{batches: [][]types.Message{{sqsMessage("m-1", bookingJSON)}}}
	consumer := NewSQSConsumer(client, "https://sqs.local/booking", proc, quietLogger(), WithWaitTime(0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Run(ctx) }()

	require.Eventually(t, func() bool { return len(client.deletedHandles()) == 1 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestHandleSQSEventReportsRetryableFailures(t *testing.T) {
	proc := newTestProcessor(t, KindUser, &fakeBuilder{sender: &recordingSender{}}, secrets.StaticStore{})
	evt := events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "retry", Body: bookingJSON},
		{MessageId: "drop", Body: `{"name":"Ana Ruiz"}`},
	}}

	resp := HandleSQSEvent(context.Background(), proc, evt)
	assert.Equal(t, []events.SQSBatchItemFailure{{ItemIdentifier: "retry"}}, resp.BatchItemFailures)
}
