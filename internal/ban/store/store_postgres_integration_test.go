//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"fraudgate/internal/ban/models"
	"fraudgate/internal/ban/store"
	"fraudgate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "bans"))
}

// Concurrent escalations of the same subject leave exactly one entry.
func (s *PostgresStoreSuite) TestConcurrentAddIsIdempotent() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry, err := models.NewBanEntry(models.KindOrigin, "203.0.113.5", "automated fraud", models.SourceAutomated, "", time.Now())
			s.Require().NoError(err)
			s.Require().NoError(s.store.Add(ctx, entry))
		}()
	}
	wg.Wait()

	entries, err := s.store.List(ctx, models.KindOrigin)
	s.Require().NoError(err)
	s.Len(entries, 1)

	banned, err := s.store.IsBanned(ctx, models.KindOrigin, "203.0.113.5")
	s.Require().NoError(err)
	s.True(banned)
}

func (s *PostgresStoreSuite) TestKindsAreSeparate() {
	ctx := context.Background()
	entry, err := models.NewBanEntry(models.KindIdentity, "a@b.c", "manual admin ban", models.SourceManual, "", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Add(ctx, entry))

	banned, err := s.store.IsBanned(ctx, models.KindOrigin, "a@b.c")
	s.Require().NoError(err)
	s.False(banned)
}
