package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	banstore "fraudgate/internal/ban/store"
	claimstore "fraudgate/internal/claim/store"
	"fraudgate/internal/platform/config"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenInMemory(t *testing.T) {
	s, err := Open(context.Background(), config.Default(), discard())
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, BackendMemory, s.BanBackend)
	assert.Equal(t, BackendMemory, s.ClaimBackend)
	assert.IsType(t, &banstore.InMemoryStore{}, s.Bans)
	assert.IsType(t, &claimstore.InMemoryStore{}, s.Claims)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestOpenRedisBans(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Redis.URL = "redis://" + mr.Addr()

	s, err := Open(context.Background(), cfg, discard())
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, BackendRedis, s.BanBackend)
	assert.Equal(t, BackendMemory, s.ClaimBackend)
	assert.IsType(t, &banstore.RedisStore{}, s.Bans)
	require.NoError(t, s.Ping(context.Background()))

	mr.Close()
	assert.Error(t, s.Ping(context.Background()))
}

func TestOpenUnreachableRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.Redis.URL = "redis://" + addr
	_, err := Open(context.Background(), cfg, discard())
	assert.Error(t, err)
}
