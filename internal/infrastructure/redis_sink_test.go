package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"astro-highpass/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakePublisher struct {
	channel  string
	messages [][]byte
	err      error
}

func (f *fakePublisher) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.messages = append(f.messages, message.([]byte))
	return redis.NewIntResult(1, f.err)
}

func TestRedisSinkPublishesCompletedJob(t *testing.T) {
	pub := &fakePublisher{}
	sink := newRedisSink(zaptest.NewLogger(t), pub, DefaultRedisChannel)

	id := uuid.New()
	err := sink.Publish(context.Background(), &domain.JobResult{
		JobID:   id,
		Index:   7,
		Status:  domain.StatusComplete,
		Rows:    10,
		Cols:    20,
		Elapsed: 1500 * time.Millisecond,
		Summary: domain.GridSummary{Min: -1, Max: 2, Mean: 0.5, StdDev: 0.25},
	})
	require.NoError(t, err)

	require.Len(t, pub.messages, 1)
	assert.Equal(t, DefaultRedisChannel, pub.channel)

	var event JobEvent
	require.NoError(t, json.Unmarshal(pub.messages[0], &event))
	assert.Equal(t, id.String(), event.JobID)
	assert.Equal(t, 7, event.Index)
	assert.Equal(t, domain.StatusComplete, event.Status)
	assert.Equal(t, int64(1500), event.ElapsedMS)
	require.NotNil(t, event.Summary)
	assert.Equal(t, 0.5, event.Summary.Mean)
	assert.Empty(t, event.Error)
}

func TestRedisSinkPublishesFailure(t *testing.T) {
	pub := &fakePublisher{}
	sink := newRedisSink(zaptest.NewLogger(t), pub, "ch")

	err := sink.Publish(context.Background(), &domain.JobResult{
		Index:  3,
		Status: domain.StatusFailed,
		Err:    domain.ErrImageNotFound,
	})
	require.NoError(t, err)

	var event JobEvent
	require.NoError(t, json.Unmarshal(pub.messages[0], &event))
	assert.Equal(t, domain.StatusFailed, event.Status)
	assert.Equal(t, "image not found", event.Error)
	assert.Nil(t, event.Summary)
}

func TestRedisSinkReturnsPublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection refused")}
	sink := newRedisSink(zaptest.NewLogger(t), pub, "ch")

	err := sink.Publish(context.Background(), &domain.JobResult{Status: domain.StatusComplete})
	assert.ErrorContains(t, err, "redis publish failed")
}
