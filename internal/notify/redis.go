package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/studentorg/events-api/internal/domain"
)

// DefaultMaxLen caps the stream length; older entries are trimmed approximately.
const DefaultMaxLen = 100_000

// Redis appends each notification to a redis stream. Consumers read it with a consumer group.
type Redis struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewRedis(client *redis.Client, stream string) *Redis {
	return &Redis{
		client: client,
		stream: stream,
		maxLen: DefaultMaxLen,
	}
}

func (r *Redis) Publish(ctx context.Context, notifications ...domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	pipe := r.client.TxPipeline()
	for _, n := range notifications {
		payload, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("json.Marshal -> %w", err)
		}

		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: r.stream,
			MaxLen: r.maxLen,
			Approx: true,
			Values: map[string]any{
				"id":      uuid.New().String(),
				"kind":    string(n.Kind),
				"payload": payload,
			},
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipe.Exec -> %w", err)
	}

	return nil
}
