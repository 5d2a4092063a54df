package fs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

type payload struct {
	ClaimID string `json:"claimID"`
}

func newTestQueue(t *testing.T, maxRetries int) *Queue[payload] {
	q, err := NewQueue[payload](afs.New(), Config{
		BasePath:   t.TempDir(),
		MaxRetries: maxRetries,
		RetryDelay: time.Millisecond,
	})
	require.NoError(t, err)
	return q
}

func TestNewQueueRequiresBasePath(t *testing.T) {
	_, err := NewQueue[payload](afs.New(), Config{})
	assert.Error(t, err)
}

func TestPublishConsumeAck(t *testing.T) {
	q := newTestQueue(t, 3)
	ctx := context.Background()

	require.NoError(t, q.Publish(ctx, &payload{ClaimID: "c-1"}))

	msg, err := q.Consume(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "c-1", msg.T().ClaimID)
	require.NoError(t, msg.Ack())
	assert.Error(t, msg.Ack(), "double ack rejected")

	// nothing left to consume
	empty, err := q.Consume(ctx)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestConsumeOrderedByCreation(t *testing.T) {
	q := newTestQueue(t, 3)
	ctx := context.Background()

	require.NoError(t, q.Publish(ctx, &payload{ClaimID: "first"}))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, q.Publish(ctx, &payload{ClaimID: "second"}))

	msg, err := q.Consume(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "first", msg.T().ClaimID)
	require.NoError(t, msg.Ack())
}

func TestNackRetriesThenDeadLetters(t *testing.T) {
	q := newTestQueue(t, 1)
	ctx := context.Background()
	require.NoError(t, q.Publish(ctx, &payload{ClaimID: "c-1"}))

	boom := errors.New("handler failed")

	// first failure lands in the failed directory and is retried
	msg, err := q.Consume(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.NoError(t, msg.Nack(boom))

	msg, err = q.Consume(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg, "failed message eligible for retry")
	require.NoError(t, msg.Nack(boom))

	// retries exhausted: the message is dead-lettered, not served again
	msg, err = q.Consume(ctx)
	require.NoError(t, err)
	assert.Nil(t, msg)
}
