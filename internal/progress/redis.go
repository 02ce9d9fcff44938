package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/jonesrussell/review-triage/internal/config"
	"github.com/jonesrussell/review-triage/internal/logger"
)

// ErrEmptyAddress is returned when the Redis address is not configured.
var ErrEmptyAddress = errors.New("redis address is required")

// connectionTimeout is the timeout for verifying the Redis connection.
const connectionTimeout = 5 * time.Second

// NewRedisClient creates a Redis client and verifies the connection.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.Database,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// RedisNotifier publishes progress messages to a Redis pub/sub channel so
// dashboards can follow runs live. Posts are rate limited to keep chatty
// runs from flooding the channel.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	limiter *rate.Limiter
	log     logger.Logger
}

// NewRedisNotifier creates a Redis-backed notifier.
// Returns nil if client is nil; a nil notifier is a no-op.
func NewRedisNotifier(client *redis.Client, channel string, rps int, log logger.Logger) *RedisNotifier {
	if client == nil {
		return nil
	}
	if rps <= 0 {
		rps = 5
	}
	return &RedisNotifier{
		client:  client,
		channel: channel,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		log:     log,
	}
}

// Post publishes the message. Rate-limited messages are dropped, not queued.
func (n *RedisNotifier) Post(ctx context.Context, message string) error {
	if n == nil || n.client == nil {
		return nil
	}

	if !n.limiter.Allow() {
		n.log.Debug("progress message dropped by rate limit",
			logger.String("channel", n.channel))
		return nil
	}

	if err := n.client.Publish(ctx, n.channel, message).Err(); err != nil {
		n.log.Warn("failed to publish progress message",
			logger.String("channel", n.channel),
			logger.Error(err))
		return fmt.Errorf("publish progress: %w", err)
	}
	return nil
}
