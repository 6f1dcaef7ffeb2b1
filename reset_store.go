package authcore

import (
	"context"
	"time"

	"github.com/MrEthical07/authcore/internal/stores"
	"github.com/redis/go-redis/v9"
)

// RedisResetTokenStore keeps reset tokens in Redis, keyed by the SHA-256 of
// the token, with a Redis TTL matching the token's expiry.
type RedisResetTokenStore struct {
	inner *stores.RedisResetTokenStore
	now   func() time.Time
}

// NewRedisResetTokenStore wraps client. An empty prefix selects "arst".
func NewRedisResetTokenStore(client redis.UniversalClient, prefix string) *RedisResetTokenStore {
	return &RedisResetTokenStore{
		inner: stores.NewRedisResetTokenStore(client, prefix),
		now:   time.Now,
	}
}

// WithClock replaces the clock used to derive the Redis TTL from a token's
// expiry. It must match the engine's clock.
func (s *RedisResetTokenStore) WithClock(now func() time.Time) *RedisResetTokenStore {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *RedisResetTokenStore) SaveResetToken(ctx context.Context, token ResetToken) error {
	return s.inner.Save(ctx, token.Token, token.AccountID, token.ExpiresAt, s.now())
}

func (s *RedisResetTokenStore) ConsumeResetToken(ctx context.Context, token string, now time.Time) (ResetToken, bool, error) {
	rec, ok, err := s.inner.Consume(ctx, token, now)
	if err != nil || !ok {
		return ResetToken{}, ok, err
	}
	return ResetToken{
		Token:     token,
		AccountID: rec.AccountID,
		ExpiresAt: time.Unix(0, rec.ExpiresAt).UTC(),
	}, true, nil
}

var _ ResetTokenStore = (*RedisResetTokenStore)(nil)
