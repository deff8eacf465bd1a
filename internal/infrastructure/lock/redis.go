package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frontdesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisConfig holds Redis lock settings
type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
	// TTL bounds how long a crashed holder can block a room.
	TTL time.Duration
	// RetryInterval is the polling delay while waiting for a held lock.
	RetryInterval time.Duration
}

// RedisRoomLocker serializes room operations across processes with
// SET NX PX and a token-checked release
type RedisRoomLocker struct {
	client        redis.UniversalClient
	keyPrefix     string
	ttl           time.Duration
	retryInterval time.Duration
	logger        *zap.Logger
}

// NewRedisRoomLocker connects to Redis and creates a locker
func NewRedisRoomLocker(cfg RedisConfig, logger *zap.Logger) (*RedisRoomLocker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisRoomLockerWithClient(client, cfg, logger), nil
}

// NewRedisRoomLockerWithClient creates a locker over an existing client
func NewRedisRoomLockerWithClient(client redis.UniversalClient, cfg RedisConfig, logger *zap.Logger) *RedisRoomLocker {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "frontdesk:room-lock:"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 50 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRoomLocker{
		client:        client,
		keyPrefix:     cfg.KeyPrefix,
		ttl:           cfg.TTL,
		retryInterval: cfg.RetryInterval,
		logger:        logger,
	}
}

// Lock polls until the room key is acquired or ctx is done
func (l *RedisRoomLocker) Lock(ctx context.Context, roomID uuid.UUID) (func(), error) {
	key := l.key(roomID)
	token := uuid.NewString()

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, shared.NewPersistenceError("acquire room lock", err)
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *RedisRoomLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		// The TTL frees the key eventually
		l.logger.Warn("failed to release room lock",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func (l *RedisRoomLocker) key(roomID uuid.UUID) string {
	return l.keyPrefix + roomID.String()
}

// Close closes the Redis connection
func (l *RedisRoomLocker) Close() error {
	return l.client.Close()
}
