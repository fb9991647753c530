// Package notify delivers operator alerts. Every notifier is best effort:
// callers log failures and carry on.
package notify

import (
	"context"
	"errors"
	"fmt"
)

// Notifier sends one alert.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Nop discards alerts.
type Nop struct{}

func (Nop) Send(context.Context, string) error { return nil }

// Multi fans an alert out to every notifier. One failing channel never stops
// the others; failures are joined.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, text string) error {
	var errs []error
	for i, n := range m {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, text); err != nil {
			errs = append(errs, fmt.Errorf("notifier %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
