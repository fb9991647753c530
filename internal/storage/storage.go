// Package storage picks the ban and claim backends from configuration so the
// server and the operator CLI always agree on where state lives.
//
// Claims go to Postgres when a DSN is set and stay in memory otherwise. Bans
// prefer Postgres, then Redis, then memory.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	banports "fraudgate/internal/ban/ports"
	banstore "fraudgate/internal/ban/store"
	claimports "fraudgate/internal/claim/ports"
	claimstore "fraudgate/internal/claim/store"
	"fraudgate/internal/platform/config"
	"fraudgate/internal/platform/postgres"
	"fraudgate/internal/platform/redis"
)

// Backend names a storage engine.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
)

// BanStore is what the gate, escalation and CLI need from the ban record.
type BanStore interface {
	banports.BanStore
	banports.BanLister
}

// Stores is the opened set of backends. Close releases every connection.
type Stores struct {
	Bans         BanStore
	Claims       claimports.ClaimStore
	BanBackend   Backend
	ClaimBackend Backend
	DB           *sql.DB
	Redis        *redis.Client
}

// Open connects the configured backends. Migrations run when AutoMigrate is set.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Stores, error) {
	s := &Stores{}

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	if db != nil {
		s.DB = db
		if cfg.Postgres.AutoMigrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				s.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		s.Bans = banstore.NewPostgres(db)
		s.Claims = claimstore.NewPostgres(db)
		s.BanBackend, s.ClaimBackend = BackendPostgres, BackendPostgres
	} else {
		s.Claims = claimstore.NewInMemory()
		s.ClaimBackend = BackendMemory
	}

	if s.Bans == nil && cfg.Redis.URL != "" {
		rdb, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Redis = rdb
		s.Bans = banstore.NewRedis(rdb.Client)
		s.BanBackend = BackendRedis
	}
	if s.Bans == nil {
		s.Bans = banstore.NewInMemory()
		s.BanBackend = BackendMemory
	}

	if s.BanBackend == BackendMemory || s.ClaimBackend == BackendMemory {
		logger.Warn("using in-memory storage, state is lost on restart",
			"ban_backend", string(s.BanBackend),
			"claim_backend", string(s.ClaimBackend),
		)
	}
	return s, nil
}

// Ping checks every opened connection.
func (s *Stores) Ping(ctx context.Context) error {
	var errs []error
	if s.DB != nil {
		if err := s.DB.PingContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("postgres: %w", err))
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Health(ctx); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (s *Stores) Close() {
	if s.DB != nil {
		_ = s.DB.Close()
	}
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
}
