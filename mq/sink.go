package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const maxFailed = 1000

// FailureSink records tasks whose handler failed. They are not retried.
type FailureSink interface {
	Record(ctx context.Context, t Task, cause error)
}

// LogSink only logs.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Record(_ context.Context, t Task, cause error) {
	s.log.Warn("notification task failed",
		zap.String("task", t.ID),
		zap.String("kind", t.Kind),
		zap.Error(cause))
}

// RedisSink logs and keeps the most recent failures in a capped list.
type RedisSink struct {
	LogSink
	client *redis.Client
}

func NewRedisSink(client *redis.Client, log *zap.Logger) *RedisSink {
	return &RedisSink{LogSink: LogSink{log: log}, client: client}
}

type failedTask struct {
	Task     Task      `json:"task"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failedAt"`
}

func (s *RedisSink) Record(ctx context.Context, t Task, cause error) {
	s.LogSink.Record(ctx, t, cause)

	data, err := json.Marshal(failedTask{Task: t, Error: cause.Error(), FailedAt: time.Now().UTC()})
	if err != nil {
		s.log.Error("marshal failed task", zap.Error(err))
		return
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, FailedKey, data)
		p.LTrim(ctx, FailedKey, 0, maxFailed-1)
		return nil
	})
	if err != nil {
		s.log.Error("store failed task", zap.String("task", t.ID), zap.Error(err))
	}
}
