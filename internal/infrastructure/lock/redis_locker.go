package lock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/ipede/email-verification-service/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix    = "email-verification:lock:"
	pollInterval = 25 * time.Millisecond
)

// Deletes the key only while it still holds our owner value.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisTokenLocker serializes verifications of the same token across instances
type RedisTokenLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	wait   time.Duration
	logger *zap.Logger
}

var _ domain.TokenLocker = (*RedisTokenLocker)(nil)

// NewRedisTokenLocker creates a locker. ttl bounds how long a crashed holder
// can block a token; wait is how long Lock polls before giving up.
func NewRedisTokenLocker(client redis.UniversalClient, ttl, wait time.Duration, logger *zap.Logger) *RedisTokenLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisTokenLocker{
		client: client,
		ttl:    ttl,
		wait:   wait,
		logger: logger,
	}
}

func lockKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(sum[:])
}

func (l *RedisTokenLocker) Lock(ctx context.Context, token string) (domain.UnlockFunc, error) {
	key := lockKey(token)
	owner := ulid.Make().String()
	deadline := time.Now().Add(l.wait)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		acquired, err := l.client.SetNX(ctx, key, owner, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, domain.ErrVerificationInProgress.WithCause(ctx.Err())
			}
			l.logger.Error("failed to acquire verification lock", zap.Error(err))
			return nil, domain.NewUnexpectedError(err)
		}
		if acquired {
			return l.unlockFunc(key, owner), nil
		}
		if !time.Now().Before(deadline) {
			return nil, domain.ErrVerificationInProgress
		}

		select {
		case <-ctx.Done():
			return nil, domain.ErrVerificationInProgress.WithCause(ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *RedisTokenLocker) unlockFunc(key, owner string) domain.UnlockFunc {
	return func(ctx context.Context) error {
		err := releaseScript.Run(ctx, l.client, []string{key}, owner).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		return nil
	}
}
