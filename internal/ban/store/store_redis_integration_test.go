//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"fraudgate/internal/ban/models"
	"fraudgate/internal/ban/store"
	"fraudgate/pkg/testutil/containers"
)

type RedisIntegrationSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisStore
}

func TestRedisIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisIntegrationSuite))
}

func (s *RedisIntegrationSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = store.NewRedis(s.redis.Client.Client)
}

func (s *RedisIntegrationSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisIntegrationSuite) TestRoundTrip() {
	ctx := context.Background()
	entry, err := models.NewBanEntry(models.KindOrigin, "2001:db8::1", "automated fraud", models.SourceAutomated, "", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Add(ctx, entry))

	banned, err := s.store.IsBanned(ctx, models.KindOrigin, "2001:db8::1")
	s.Require().NoError(err)
	s.True(banned)

	entries, err := s.store.List(ctx, models.KindOrigin)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(entry.ID, entries[0].ID)
}
