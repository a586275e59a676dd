package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"

	notesv1 "mip-notes/pkg/notesv1"
)

// DefaultChannel канал Redis для событий заметок
const DefaultChannel = "notes-events"

// redisClient часть API go-redis, нужная публикатору
type redisClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Close() error
}

// RedisPublisher публикует события заметок в Redis, чтобы клиенты в других процессах
// могли инвалидировать свой кэш списка заметок
type RedisPublisher struct {
	client  redisClient
	channel string
}

// NewRedisPublisher подключается к Redis по URL и проверяет соединение
func NewRedisPublisher(ctx context.Context, redisURL, channel string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// maint_notifications недоступны в Redis 7 и дают лишнее предупреждение
	opts.MaintNotificationsConfig = &maintnotifications.Config{
		Mode: maintnotifications.ModeDisabled,
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisPublisher(client, channel), nil
}

func newRedisPublisher(client redisClient, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

// Publish публикует событие в канал как JSON
func (p *RedisPublisher) Publish(ctx context.Context, event notesv1.NoteEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis: %w", err)
	}

	return nil
}

// Close закрывает соединение с Redis
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
