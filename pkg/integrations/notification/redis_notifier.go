package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"
)

const (
	DefaultNotificationKeyPrefix = "agencyflow:notifications"
	DefaultNotificationChannel   = "agencyflow:notifications:live"
	DefaultNotificationMaxLen    = 500
)

// RedisNotifier stores notifications in a capped list per recipient and
// publishes them for live subscribers.
type RedisNotifier struct {
	client    redis.UniversalClient
	keyPrefix string
	channel   string
	maxLen    int64
}

type RedisNotifierOptions struct {
	KeyPrefix string
	Channel   string
	MaxLen    int64
}

func NewRedisNotifier(client redis.UniversalClient, opts RedisNotifierOptions) *RedisNotifier {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = DefaultNotificationKeyPrefix
	}

	if opts.Channel == "" {
		opts.Channel = DefaultNotificationChannel
	}

	if opts.MaxLen <= 0 {
		opts.MaxLen = DefaultNotificationMaxLen
	}

	return &RedisNotifier{
		client:    client,
		keyPrefix: opts.KeyPrefix,
		channel:   opts.Channel,
		maxLen:    opts.MaxLen,
	}
}

type storedNotification struct {
	ID string `json:"id"`
	domain.Notification
}

func (n *RedisNotifier) Notify(ctx context.Context, notification domain.Notification) (string, error) {
	id := xid.New().String()

	raw, err := json.Marshal(storedNotification{ID: id, Notification: notification})
	if err != nil {
		return "", fmt.Errorf("failed to marshal notification: %w", err)
	}

	key := n.keyPrefix
	if notification.Recipient != "" {
		key = fmt.Sprintf("%s:%s", n.keyPrefix, notification.Recipient)
	}

	pipe := n.client.TxPipeline()
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, n.maxLen-1)
	pipe.Publish(ctx, n.channel, raw)

	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to store notification: %w", err)
	}

	return id, nil
}
