package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"astro-highpass/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// publisher is the part of redis.Cmdable used by RedisSink.
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// JobEvent is the message published for every resolved job.
type JobEvent struct {
	JobID     string              `json:"job_id"`
	Index     int                 `json:"index"`
	Status    domain.JobStatus    `json:"status"`
	Rows      int                 `json:"rows"`
	Cols      int                 `json:"cols"`
	ElapsedMS int64               `json:"elapsed_ms"`
	Summary   *domain.GridSummary `json:"summary,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// RedisSink broadcasts job results over Redis Pub/Sub.
type RedisSink struct {
	logger  *zap.Logger
	client  publisher
	channel string
}

var _ domain.ResultSink = (*RedisSink)(nil)

// NewRedisSink connects to addr and checks the connection.
func NewRedisSink(ctx context.Context, logger *zap.Logger, addr, channel string) (*RedisSink, *redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return newRedisSink(logger, rdb, channel), rdb, nil
}

func newRedisSink(logger *zap.Logger, client publisher, channel string) *RedisSink {
	return &RedisSink{logger: logger, client: client, channel: channel}
}

func (s *RedisSink) Publish(ctx context.Context, result *domain.JobResult) error {
	data, err := json.Marshal(NewJobEvent(result))
	if err != nil {
		return fmt.Errorf("failed to marshal job event: %w", err)
	}

	if err := s.client.Publish(ctx, s.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}

	s.logger.Debug("Published job event",
		zap.String("channel", s.channel),
		zap.Int("index", result.Index))
	return nil
}

func NewJobEvent(result *domain.JobResult) JobEvent {
	event := JobEvent{
		JobID:     result.JobID.String(),
		Index:     result.Index,
		Status:    result.Status,
		Rows:      result.Rows,
		Cols:      result.Cols,
		ElapsedMS: result.Elapsed.Milliseconds(),
	}
	if result.Err != nil {
		event.Error = result.Err.Error()
	} else {
		summary := result.Summary
		event.Summary = &summary
	}
	return event
}
