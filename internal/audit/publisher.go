package audit

import (
	"context"
	"log/slog"
	"time"

	"fraudgate/pkg/requestcontext"
)

// Publisher captures structured audit events. Emit never blocks the request
// path: events land in a bounded buffer that a Worker drains to a Sink.
type Publisher struct {
	buffer *RingBuffer
}

func NewPublisher(buffer *RingBuffer) *Publisher {
	return &Publisher{buffer: buffer}
}

// Emit stamps the event with time and request ID when missing and buffers it.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if p == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	p.buffer.Enqueue(event)
}

// Emitter is the narrow interface domain services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// Log records an event both in the structured log and the audit stream.
// A nil publisher only logs.
func Log(ctx context.Context, logger *slog.Logger, publisher Emitter, event Event, attrs ...any) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if logger != nil {
		args := append([]any{
			"event", string(event.Action),
			"log_type", "audit",
			"request_id", requestcontext.RequestID(ctx),
		}, attrs...)
		if event.ClaimID != "" {
			args = append(args, "claim_id", event.ClaimID)
		}
		if event.SubjectKind != "" {
			args = append(args, "subject_kind", event.SubjectKind)
		}
		logger.InfoContext(ctx, string(event.Action), args...)
	}
	if publisher != nil {
		publisher.Emit(ctx, event)
	}
}
