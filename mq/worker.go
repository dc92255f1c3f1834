package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

const pollWait = time.Second

// HandlerFunc processes one task.
type HandlerFunc func(ctx context.Context, t Task) error

// Worker pulls tasks off a Queue and runs them on an ants pool.
type Worker struct {
	queue    Queue
	pool     *ants.Pool
	sink     FailureSink
	log      *zap.Logger
	handlers map[string]HandlerFunc

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewWorker creates a worker with size concurrent task slots.
func NewWorker(queue Queue, size int, sink FailureSink, log *zap.Logger) (*Worker, error) {
	if size <= 0 {
		size = 1
	}
	pool, err := ants.NewPool(size, ants.WithPanicHandler(func(v any) {
		log.Error("notification task panicked", zap.Any("panic", v))
	}))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Worker{
		queue:    queue,
		pool:     pool,
		sink:     sink,
		log:      log,
		handlers: make(map[string]HandlerFunc),
		done:     make(chan struct{}),
	}, nil
}

// Handle registers fn for tasks of the given kind. Call before Start.
func (w *Worker) Handle(kind string, fn HandlerFunc) {
	w.handlers[kind] = fn
}

// Start runs the dequeue loop in its own goroutine.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	go w.loop(ctx)
}

func (w *Worker) loop(ctx context.Context) {
	defer close(w.done)
	for {
		t, err := w.queue.Dequeue(ctx, pollWait)
		switch {
		case err == nil:
			w.dispatch(ctx, t)
		case errors.Is(err, ErrQueueEmpty):
		case ctx.Err() != nil, errors.Is(err, ErrQueueClosed):
			return
		default:
			w.log.Warn("dequeue failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(pollWait):
			}
		}
	}
}

func (w *Worker) dispatch(ctx context.Context, t Task) {
	fn, ok := w.handlers[t.Kind]
	if !ok {
		w.sink.Record(ctx, t, fmt.Errorf("no handler for %q", t.Kind))
		return
	}
	// In-flight tasks finish even after Stop cancels the loop.
	taskCtx := context.WithoutCancel(ctx)
	err := w.pool.Submit(func() {
		if err := fn(taskCtx, t); err != nil {
			w.sink.Record(taskCtx, t, err)
		}
	})
	if err != nil {
		w.sink.Record(ctx, t, fmt.Errorf("submit: %w", err))
	}
}

// Stop ends the dequeue loop and waits up to timeout for running tasks.
func (w *Worker) Stop(timeout time.Duration) error {
	var err error
	w.once.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.done
		}
		err = w.pool.ReleaseTimeout(timeout)
	})
	return err
}
