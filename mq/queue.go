package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Task kinds
const (
	KindWelcome = "welcome"
)

const (
	TasksKey  = "notify:tasks"
	FailedKey = "notify:failed"
)

// ErrQueueEmpty is returned by Dequeue when nothing arrived before the wait elapsed.
var ErrQueueEmpty = errors.New("queue empty")

// ErrQueueClosed is returned once a queue has been closed.
var ErrQueueClosed = errors.New("queue closed")

// ErrQueueFull is returned by MemoryQueue.Enqueue when the buffer has no free slot.
var ErrQueueFull = errors.New("queue full")

// Task is one unit of background work.
type Task struct {
	ID         string            `json:"id"`
	Kind       string            `json:"kind"`
	Payload    map[string]string `json:"payload"`
	EnqueuedAt time.Time         `json:"enqueuedAt"`
}

// NewTask stamps a task with an id and enqueue time.
func NewTask(kind string, payload map[string]string) Task {
	return Task{ID: uuid.NewString(), Kind: kind, Payload: payload, EnqueuedAt: time.Now().UTC()}
}

// Queue is a FIFO of tasks shared by producers and the worker.
type Queue interface {
	Enqueue(ctx context.Context, t Task) error
	// Dequeue waits up to wait for a task.
	Dequeue(ctx context.Context, wait time.Duration) (Task, error)
}

// RedisQueue pushes on the left of a list and pops from the right.
type RedisQueue struct {
	client *redis.Client
	key    string
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client, key: TasksKey}
}

func (q *RedisQueue) Enqueue(ctx context.Context, t Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context, wait time.Duration) (Task, error) {
	res, err := q.client.BRPop(ctx, wait, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return Task{}, ErrQueueEmpty
	}
	if err != nil {
		return Task{}, fmt.Errorf("dequeue task: %w", err)
	}
	// res is [key, value]
	var t Task
	if err := json.Unmarshal([]byte(res[1]), &t); err != nil {
		return Task{}, fmt.Errorf("decode task: %w", err)
	}
	return t, nil
}

// MemoryQueue is the in-process queue used when Redis is not configured.
type MemoryQueue struct {
	ch   chan Task
	done chan struct{}
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 256
	}
	return &MemoryQueue{ch: make(chan Task, size), done: make(chan struct{})}
}

// Enqueue never blocks: a full buffer fails with ErrQueueFull.
func (q *MemoryQueue) Enqueue(ctx context.Context, t Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}
	select {
	case q.ch <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context, wait time.Duration) (Task, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case t := <-q.ch:
		return t, nil
	case <-timer.C:
		return Task{}, ErrQueueEmpty
	case <-q.done:
		return Task{}, ErrQueueClosed
	case <-ctx.Done():
		return Task{}, ctx.Err()
	}
}

// Close stops further enqueues. Tasks still buffered are dropped.
func (q *MemoryQueue) Close() {
	select {
	case <-q.done:
	default:
		close(q.done)
	}
}
