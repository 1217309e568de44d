package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/resqsphere/internal/metrics"
	"github.com/shenikar/resqsphere/internal/webhook"
	"github.com/sirupsen/logrus"
)

// Channel - канал Redis, через который экземпляры сервиса делятся событиями
const Channel = "resqsphere:events"

// Gateway публикует события подписчикам. С клиентом Redis события проходят через
// pub/sub и доходят до подписчиков всех экземпляров, без него рассылаются локально.
type Gateway struct {
	hub           *Hub
	redisClient   *redis.Client
	webhooks      webhook.Enqueuer
	webhookEvents map[string]struct{}
	logger        *logrus.Logger
	now           func() time.Time
	retryDelay    time.Duration
}

type GatewayOption func(*Gateway)

// WithRedis включает рассылку через Redis pub/sub
func WithRedis(client *redis.Client) GatewayOption {
	return func(g *Gateway) { g.redisClient = client }
}

// WithWebhooks дублирует перечисленные события в очередь вебхуков
func WithWebhooks(queue webhook.Enqueuer, events []string) GatewayOption {
	return func(g *Gateway) {
		g.webhooks = queue
		for _, event := range events {
			g.webhookEvents[event] = struct{}{}
		}
	}
}

func NewGateway(hub *Hub, logger *logrus.Logger, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		hub:           hub,
		webhookEvents: make(map[string]struct{}),
		logger:        logger,
		now:           time.Now,
		retryDelay:    relayRetryDelay,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Publish рассылает событие всем подписчикам
func (g *Gateway) Publish(ctx context.Context, event string, payload any) error {
	return g.PublishToRoom(ctx, "", event, payload)
}

// PublishToRoom рассылает событие участникам комнаты
func (g *Gateway) PublishToRoom(ctx context.Context, room, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		metrics.BroadcastEvents.WithLabelValues(event, "error").Inc()
		return fmt.Errorf("broadcast: marshal %s payload: %w", event, err)
	}
	env := Envelope{Event: event, Room: room, Data: data}

	if err := g.fanOut(ctx, env); err != nil {
		metrics.BroadcastEvents.WithLabelValues(event, "error").Inc()
		return err
	}
	metrics.BroadcastEvents.WithLabelValues(event, "ok").Inc()

	if _, ok := g.webhookEvents[event]; ok && g.webhooks != nil && room == "" {
		if err := g.webhooks.Enqueue(ctx, webhook.Event{Event: event, Payload: data, Timestamp: g.now()}); err != nil {
			g.logger.WithError(err).WithField("event", event).Warn("Failed to enqueue webhook")
		}
	}
	return nil
}

func (g *Gateway) fanOut(ctx context.Context, env Envelope) error {
	if g.redisClient == nil {
		g.hub.Broadcast(ctx, env)
		return nil
	}

	message, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("broadcast: marshal envelope: %w", err)
	}
	if err := g.redisClient.Publish(ctx, Channel, message).Err(); err != nil {
		return fmt.Errorf("broadcast: publish %s to redis: %w", env.Event, err)
	}
	return nil
}

// relayRetryDelay - пауза перед повторной подпиской после ошибки
const relayRetryDelay = 2 * time.Second

// Relay пересылает события из Redis в локальный hub до отмены ctx.
// Ошибки подписки не завершают Relay: подписка повторяется, пока жив ctx.
func (g *Gateway) Relay(ctx context.Context) {
	if g.redisClient == nil {
		return
	}

	for {
		err := g.relay(ctx)
		if ctx.Err() != nil {
			return
		}
		g.logger.WithError(err).WithField("channel", Channel).Error("Event relay interrupted, resubscribing")

		select {
		case <-ctx.Done():
			return
		case <-time.After(g.retryDelay):
		}
	}
}

func (g *Gateway) relay(ctx context.Context) error {
	pubsub := g.redisClient.Subscribe(ctx, Channel)
	defer pubsub.Close()

	// дожидаемся подтверждения подписки
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("broadcast: subscribe to %s: %w", Channel, err)
	}
	g.logger.WithField("channel", Channel).Info("Event relay subscribed")

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("broadcast: %s subscription closed", Channel)
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				g.logger.WithError(err).Warn("Dropping malformed relay message")
				continue
			}
			g.hub.Broadcast(ctx, env)
		}
	}
}
