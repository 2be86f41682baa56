package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskflow/approval-platform/internal/core/domain"
)

const dedupTTL = time.Hour

// Store is the subset of the Redis client the publisher needs.
// *redis.Client satisfies it.
type Store interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Publisher fans task notifications out on a Redis pub/sub channel.
// Each task/status pair is published at most once per dedupTTL.
// Key format: notify:<task_id>:<status>
type Publisher struct {
	client  Store
	channel string
}

// NewPublisher creates a Publisher wrapping the given Redis client.
func NewPublisher(client Store, channel string) *Publisher {
	return &Publisher{client: client, channel: channel}
}

type message struct {
	TaskID       string    `json:"taskId"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	AssignedUser string    `json:"assignedUser,omitempty"`
	Actor        string    `json:"actor"`
	OccurredAt   time.Time `json:"occurredAt"`
	Text         string    `json:"text"`
}

// Notify satisfies ports.Notifier.
func (p *Publisher) Notify(ctx context.Context, n domain.TaskNotification) error {
	fresh, err := p.client.SetNX(ctx, dedupKey(n), "1", dedupTTL).Result()
	if err != nil {
		return fmt.Errorf("dedup mark: %w", err)
	}
	if !fresh {
		return nil
	}

	payload, err := json.Marshal(message{
		TaskID:       n.TaskID,
		Title:        n.Title,
		Status:       string(n.Status),
		AssignedUser: n.AssignedUser,
		Actor:        n.Actor,
		OccurredAt:   n.OccurredAt.UTC(),
		Text:         n.Message(),
	})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		// Let a later retry of the same transition publish again.
		_ = p.client.Del(ctx, dedupKey(n)).Err()
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func dedupKey(n domain.TaskNotification) string {
	return fmt.Sprintf("notify:%s:%s", n.TaskID, n.Status)
}
