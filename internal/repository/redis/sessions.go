package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tikko-events/checkout-go/internal/domain"
	"github.com/tikko-events/checkout-go/internal/repository"
)

// SessionStore keeps checkout sessions as JSON values with a TTL. The TTL is
// refreshed on every write so an active checkout never expires mid-flow.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	return &SessionStore{rdb: rdb, ttl: ttl}
}

func (s *SessionStore) Save(ctx context.Context, sess *domain.CheckoutSession) error {
	const op = "redisrepo.SessionStore.Save"

	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := s.rdb.Set(ctx, KeySession(sess.ID.String()), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func (s *SessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.CheckoutSession, error) {
	const op = "redisrepo.SessionStore.Get"

	v, err := s.rdb.Get(ctx, KeySession(id.String())).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	var sess domain.CheckoutSession
	if err := json.Unmarshal([]byte(v), &sess); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "redisrepo.SessionStore.Delete"

	n, err := s.rdb.Del(ctx, KeySession(id.String())).Result()
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}
