package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/resqsphere/internal/config"
	"github.com/shenikar/resqsphere/internal/metrics"
	"github.com/sirupsen/logrus"
)

const (
	SignatureHeader = "X-Webhook-Signature"
	EventHeader     = "X-Webhook-Event"
)

// Worker забирает события из очереди и доставляет их на WEBHOOK_URL
type Worker struct {
	redisClient *redis.Client
	logger      *logrus.Logger
	cfg         *config.Config
	httpClient  *http.Client
	sleep       func(ctx context.Context, d time.Duration) bool
}

func NewWorker(redisClient *redis.Client, logger *logrus.Logger, cfg *config.Config) *Worker {
	return &Worker{
		redisClient: redisClient,
		logger:      logger,
		cfg:         cfg,
		httpClient: &http.Client{
			Timeout: cfg.WebhookTimeout,
		},
		sleep: sleepCtx,
	}
}

// Run обрабатывает очередь до отмены ctx
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("Starting webhook worker...")
	defer w.logger.Info("Stopping webhook worker.")

	for {
		if ctx.Err() != nil {
			return
		}

		// 0 означает бесконечное ожидание
		result, err := w.redisClient.BRPop(ctx, 0, queueKey).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			w.logger.WithError(err).Error("Failed to pop webhook event from Redis")
			w.sleep(ctx, w.cfg.WebhookTimeout)
			continue
		}

		// result[0] - ключ, result[1] - значение
		var event Event
		if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
			w.logger.WithError(err).Error("Failed to unmarshal webhook event from Redis")
			continue
		}

		w.Deliver(ctx, event, []byte(result[1]))
	}
}

// Deliver отправляет событие с экспоненциальной задержкой между попытками. Возвращает true при успехе.
func (w *Worker) Deliver(ctx context.Context, event Event, body []byte) bool {
	log := w.logger.WithField("event", event.Event)
	log.Debug("Processing webhook event...")

	if w.cfg.WebhookURL == "" {
		log.Warn("Webhook URL is not configured. Skipping webhook delivery.")
		return false
	}

	maxRetries := max(w.cfg.WebhookMaxRetries, 1)
	delay := w.cfg.WebhookBaseDelay

	for attempt := 1; attempt <= maxRetries; attempt++ {
		status, err := w.send(ctx, event.Event, body)
		if err == nil && status >= 200 && status < 300 {
			log.WithField("attempt", attempt).Info("Webhook delivered successfully.")
			metrics.WebhookDeliveries.WithLabelValues("ok").Inc()
			return true
		}

		entry := log.WithField("attempt", attempt).WithField("retries_left", maxRetries-attempt)
		if err != nil {
			entry = entry.WithError(err)
		} else {
			entry = entry.WithField("status_code", status)
		}
		entry.Warn("Webhook delivery failed")

		if attempt == maxRetries {
			break
		}
		if !w.sleep(ctx, delay) {
			log.Warn("Webhook delivery interrupted")
			return false
		}
		delay *= 2
	}

	log.Errorf("Failed to deliver webhook for event after %d attempts.", maxRetries)
	metrics.WebhookDeliveries.WithLabelValues("failed").Inc()
	return false
}

func (w *Worker) send(ctx context.Context, eventName string, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(EventHeader, eventName)

	if w.cfg.WebhookSecret != "" {
		req.Header.Set(SignatureHeader, Sign(body, w.cfg.WebhookSecret))
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

// Sign генерирует HMAC-SHA256 подпись тела запроса
func Sign(data []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
