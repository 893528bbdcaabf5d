package reconcile_service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tcp_snm/arena/internal/arena_errors"
)

// TriggerQueue carries on-demand reconcile requests between instances
type TriggerQueue interface {
	Push(ctx context.Context, domainID string) error
	// Pop blocks up to timeout. An empty domain id with a nil error means
	// nothing arrived.
	Pop(ctx context.Context, timeout time.Duration) (string, error)
}

type RedisTriggerQueue struct {
	Client *redis.Client
	Name   string
}

func NewRedisTriggerQueue(client *redis.Client, name string) *RedisTriggerQueue {
	if name == "" {
		name = defaultQueueName
	}
	return &RedisTriggerQueue{Client: client, Name: name}
}

func (q *RedisTriggerQueue) Push(ctx context.Context, domainID string) error {
	if err := q.Client.LPush(ctx, q.Name, domainID).Err(); err != nil {
		return fmt.Errorf(
			"%w, cannot push domain %s to queue %s, %w",
			arena_errors.ErrInternal,
			domainID,
			q.Name,
			err,
		)
	}
	return nil
}

func (q *RedisTriggerQueue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	result, err := q.Client.BRPop(ctx, timeout, q.Name).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf(
			"%w, cannot pop from queue %s, %w",
			arena_errors.ErrInternal,
			q.Name,
			err,
		)
	}
	// [key, value]
	if len(result) < 2 {
		return "", nil
	}
	return result[1], nil
}
