package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/user"

	"fraudgate/internal/ban/escalation"
	claimports "fraudgate/internal/claim/ports"
	"fraudgate/internal/platform/config"
	"fraudgate/internal/storage"
	"fraudgate/internal/verification/review"
)

// Backends is everything a command may touch. Close releases connections.
type Backends struct {
	Config   config.Config
	Bans     storage.BanStore
	Reviewer *review.Service
	Close    func()
}

// Opener builds Backends. Tests substitute in-memory stores.
type Opener func(ctx context.Context) (*Backends, error)

// OpenFromConfig loads the service configuration and opens its stores.
func OpenFromConfig(logger *slog.Logger) Opener {
	return func(ctx context.Context) (*Backends, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		stores, err := storage.Open(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		b, err := NewBackends(cfg, stores.Bans, stores.Claims, logger)
		if err != nil {
			stores.Close()
			return nil, err
		}
		b.Close = stores.Close
		return b, nil
	}
}

// NewBackends wires the review service over the given stores.
func NewBackends(cfg config.Config, bans storage.BanStore, claims claimports.ClaimStore, logger *slog.Logger) (*Backends, error) {
	escalator, err := escalation.New(bans, claims,
		escalation.WithLogger(logger),
		escalation.WithRetry(cfg.Verification.BanRetryAttempts, cfg.Verification.BanRetryBackoff),
	)
	if err != nil {
		return nil, err
	}
	reviewer, err := review.New(claims, escalator, logger)
	if err != nil {
		return nil, err
	}
	return &Backends{Config: cfg, Bans: bans, Reviewer: reviewer, Close: func() {}}, nil
}

func defaultOperator() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return "cli:" + u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return "cli:" + name
	}
	return "cli"
}

// withBackends opens storage for the duration of fn.
func withBackends(ctx context.Context, open Opener, fn func(*Backends) error) error {
	b, err := open(ctx)
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(b)
}
