package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey = "resqsphere:webhook_events"
)

// Event - событие, доставляемое внешнему обработчику
type Event struct {
	Event     string          `json:"event"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// Enqueuer ставит события в очередь доставки
type Enqueuer interface {
	Enqueue(ctx context.Context, event Event) error
}

// RedisQueue - очередь вебхуков на списке Redis
type RedisQueue struct {
	redisClient *redis.Client
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{
		redisClient: client,
	}
}

// NewEvent сериализует payload и оборачивает его в Event
func NewEvent(name string, payload any, at time.Time) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal webhook payload: %w", err)
	}
	return Event{Event: name, Payload: raw, Timestamp: at}, nil
}

// Enqueue кладет событие в левую часть списка, воркер забирает справа
func (q *RedisQueue) Enqueue(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	if err := q.redisClient.LPush(ctx, queueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue webhook event to Redis: %w", err)
	}
	return nil
}
