package locking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrLockLost is reported when a lock expired before it was released.
var ErrLockLost = errors.New("locking: lock expired before release")

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisConfig holds the Redis lock settings
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	// TTL bounds how long a crashed holder can block a key
	TTL time.Duration
	// RetryInterval is the pause between acquisition attempts
	RetryInterval time.Duration
}

// DefaultRedisConfig returns default Redis lock settings
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:          "localhost:6379",
		KeyPrefix:     "wordmaster:lock:",
		TTL:           10 * time.Second,
		RetryInterval: 50 * time.Millisecond,
	}
}

// RedisLocker serializes work per key across processes sharing one Redis.
type RedisLocker struct {
	client *redis.Client
	config *RedisConfig
	log    *zap.Logger
}

// NewRedisLocker connects to Redis and returns a locker
func NewRedisLocker(ctx context.Context, config *RedisConfig, log *zap.Logger) (*RedisLocker, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}
	if config.TTL <= 0 {
		return nil, fmt.Errorf("lock ttl must be positive")
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = DefaultRedisConfig().RetryInterval
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("redis locker connected", zap.String("addr", config.Addr))

	return &RedisLocker{client: client, config: config, log: log}, nil
}

// Lock acquires key with SET NX PX, retrying until ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	fullKey := l.config.KeyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.config.RetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.config.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return func() {
		// Release must succeed even when the caller's context was cancelled.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
		defer cancel()

		n, err := releaseScript.Run(releaseCtx, l.client, []string{fullKey}, token).Int()
		switch {
		case err != nil:
			l.log.Warn("failed to release lock", zap.String("key", key), zap.Error(err))
		case n == 0:
			l.log.Warn("lock released after expiry", zap.String("key", key), zap.Error(ErrLockLost))
		}
	}, nil
}

// Close closes the Redis client
func (l *RedisLocker) Close() error {
	return l.client.Close()
}
