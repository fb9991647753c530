package audit

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultBatchSize     = 100
	defaultFlushInterval = time.Second
	shutdownFlushTimeout = 5 * time.Second
)

// Worker drains the buffer into a sink on a fixed interval. A failed batch is
// logged and dropped; audit delivery never back-pressures the request path.
type Worker struct {
	buffer    *RingBuffer
	sink      Sink
	logger    *slog.Logger
	metrics   *Metrics
	batchSize int
	interval  time.Duration
}

type WorkerOption func(*Worker)

func WithBatchSize(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func WithFlushInterval(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) {
		w.logger = logger
	}
}

func WithWorkerMetrics(m *Metrics) WorkerOption {
	return func(w *Worker) {
		w.metrics = m
	}
}

func NewWorker(buffer *RingBuffer, sink Sink, opts ...WorkerOption) *Worker {
	w := &Worker{
		buffer:    buffer,
		sink:      sink,
		logger:    slog.Default(),
		batchSize: defaultBatchSize,
		interval:  defaultFlushInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run flushes until ctx is cancelled, then performs a final bounded flush.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownFlushTimeout)
			w.Flush(flushCtx)
			cancel()
			return nil
		case <-ticker.C:
			w.Flush(ctx)
		}
	}
}

// Flush drains everything currently buffered.
func (w *Worker) Flush(ctx context.Context) {
	for {
		batch := w.buffer.DequeueBatch(w.batchSize)
		if len(batch) == 0 {
			break
		}
		if err := w.sink.Write(ctx, batch); err != nil {
			w.logger.ErrorContext(ctx, "failed to deliver audit batch",
				"error", err,
				"events", len(batch),
			)
			if w.metrics != nil {
				w.metrics.Failed.Add(float64(len(batch)))
			}
			continue
		}
		if w.metrics != nil {
			w.metrics.Delivered.Add(float64(len(batch)))
		}
	}
	if w.metrics != nil {
		w.metrics.Buffered.Set(float64(w.buffer.Len()))
		w.metrics.Dropped.Set(float64(w.buffer.Dropped()))
	}
}
