package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"fraudgate/internal/ban/models"
)

const redisKeyPrefix = "fraudgate:bans:"

// RedisStore keeps one set of banned values per kind, plus a hash holding the
// first entry recorded for each value. Keys never expire.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedis constructs a Redis-backed ban store.
func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func setKey(kind models.SubjectKind) string {
	return redisKeyPrefix + string(kind)
}

func entriesKey(kind models.SubjectKind) string {
	return redisKeyPrefix + string(kind) + ":entries"
}

func (s *RedisStore) IsBanned(ctx context.Context, kind models.SubjectKind, value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	ok, err := s.client.SIsMember(ctx, setKey(kind), value).Result()
	if err != nil {
		return false, fmt.Errorf("check ban: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Add(ctx context.Context, entry *models.BanEntry) error {
	if entry == nil {
		return fmt.Errorf("ban entry is required")
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal ban entry: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSetNX(ctx, entriesKey(entry.Kind), entry.Value, payload)
		pipe.SAdd(ctx, setKey(entry.Kind), entry.Value)
		return nil
	})
	if err != nil {
		return fmt.Errorf("add ban: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, kind models.SubjectKind) ([]*models.BanEntry, error) {
	raw, err := s.client.HGetAll(ctx, entriesKey(kind)).Result()
	if err != nil {
		return nil, fmt.Errorf("list bans: %w", err)
	}
	entries := make([]*models.BanEntry, 0, len(raw))
	for _, payload := range raw {
		var e models.BanEntry
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, fmt.Errorf("decode ban entry: %w", err)
		}
		entries = append(entries, &e)
	}
	sortEntries(entries)
	return entries, nil
}
