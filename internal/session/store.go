package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jobhive/jobhive/internal/models"
	"github.com/jobhive/jobhive/internal/utils"
)

const keyPrefix = "session:"

// Store keeps authenticated identities keyed by opaque session ids. Only
// the id travels in the client cookie; the claims stay server-side and
// expire with the TTL.
type Store interface {
	Create(ctx context.Context, ident models.Identity) (string, error)
	Get(ctx context.Context, id string) (*models.Identity, error)
	Delete(ctx context.Context, id string) error
}

type redisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisStore{rdb: rdb, ttl: ttl}
}

func (s *redisStore) Create(ctx context.Context, ident models.Identity) (string, error) {
	b, err := json.Marshal(ident)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	if err := s.rdb.Set(ctx, keyPrefix+id, b, s.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

func (s *redisStore) Get(ctx context.Context, id string) (*models.Identity, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+id).Result()
	if err == redis.Nil {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var ident models.Identity
	if err := json.Unmarshal([]byte(raw), &ident); err != nil {
		// corrupt entry: drop it and treat the session as missing
		_ = s.rdb.Del(ctx, keyPrefix+id).Err()
		return nil, utils.ErrNotFound
	}
	return &ident, nil
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.rdb.Del(ctx, keyPrefix+id).Err()
}
