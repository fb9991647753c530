package audit

import (
	"context"
	"log/slog"
	"sync"
)

// Sink persists or forwards a batch of audit events.
type Sink interface {
	Write(ctx context.Context, events []Event) error
}

// LogSink writes events to the structured log. Used when no stream is configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Write(ctx context.Context, events []Event) error {
	for _, e := range events {
		s.logger.InfoContext(ctx, "audit event",
			"action", string(e.Action),
			"subject_kind", e.SubjectKind,
			"subject", e.Subject,
			"claim_id", e.ClaimID,
			"actor", e.Actor,
			"reason", e.Reason,
			"request_id", e.RequestID,
			"timestamp", e.Timestamp,
		)
	}
	return nil
}

// MemorySink keeps events in memory. Useful in tests and the CLI.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Write(_ context.Context, events []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	return nil
}

// Events returns a copy of everything written so far.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}
