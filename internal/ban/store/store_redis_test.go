package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"fraudgate/internal/ban/models"
)

type RedisStoreSuite struct {
	suite.Suite
	mr    *miniredis.Miniredis
	store *RedisStore
	ctx   context.Context
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupTest() {
	s.mr = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.T().Cleanup(func() { _ = client.Close() })
	s.store = NewRedis(client)
	s.ctx = context.Background()
}

func (s *RedisStoreSuite) TestAddAndQuery() {
	entry := newEntry(s.T(), models.KindIdentity, "Fraud@Example.com", "automated fraud", time.Now())
	s.Require().NoError(s.store.Add(s.ctx, entry))

	banned, err := s.store.IsBanned(s.ctx, models.KindIdentity, "fraud@example.com")
	s.Require().NoError(err)
	s.True(banned)

	banned, err = s.store.IsBanned(s.ctx, models.KindOrigin, "fraud@example.com")
	s.Require().NoError(err)
	s.False(banned)
}

func (s *RedisStoreSuite) TestDuplicateKeepsFirstEntry() {
	now := time.Now().UTC().Truncate(time.Second)
	s.Require().NoError(s.store.Add(s.ctx, newEntry(s.T(), models.KindOrigin, "203.0.113.5", "first", now)))
	s.Require().NoError(s.store.Add(s.ctx, newEntry(s.T(), models.KindOrigin, "203.0.113.5", "second", now)))

	entries, err := s.store.List(s.ctx, models.KindOrigin)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("first", entries[0].Reason)
}

func (s *RedisStoreSuite) TestEntriesDoNotExpire() {
	s.Require().NoError(s.store.Add(s.ctx, newEntry(s.T(), models.KindOrigin, "203.0.113.5", "fraud", time.Now())))
	s.mr.FastForward(365 * 24 * time.Hour)

	banned, err := s.store.IsBanned(s.ctx, models.KindOrigin, "203.0.113.5")
	s.Require().NoError(err)
	s.True(banned)
}

func (s *RedisStoreSuite) TestUnavailable() {
	s.mr.Close()

	_, err := s.store.IsBanned(s.ctx, models.KindOrigin, "203.0.113.5")
	s.Error(err)
}
