package webhook

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shenikar/resqsphere/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorker(t *testing.T, cfg *config.Config) (*Worker, *bytes.Buffer, *[]time.Duration) {
	t.Helper()
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	w := NewWorker(nil, logger, cfg)
	delays := make([]time.Duration, 0)
	w.sleep = func(ctx context.Context, d time.Duration) bool {
		delays = append(delays, d)
		return ctx.Err() == nil
	}
	return w, &buf, &delays
}

func TestWorkerDeliver_SignsPayload(t *testing.T) {
	// Подготовка
	var gotSignature, gotEvent string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get(SignatureHeader)
		gotEvent = r.Header.Get(EventHeader)
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := &config.Config{WebhookURL: server.URL, WebhookSecret: "s3cret", WebhookTimeout: time.Second, WebhookMaxRetries: 3, WebhookBaseDelay: time.Second}
	worker, _, delays := newTestWorker(t, cfg)

	event, err := NewEvent("newIncident", map[string]string{"title": "Fire Alarm"}, time.Now())
	require.NoError(t, err)
	body := []byte(`{"event":"newIncident"}`)

	// Действие
	ok := worker.Deliver(context.Background(), event, body)

	// Проверки
	assert.True(t, ok)
	assert.Equal(t, body, gotBody)
	assert.Equal(t, "newIncident", gotEvent)
	assert.Equal(t, Sign(body, "s3cret"), gotSignature)
	assert.Empty(t, *delays)
}

func TestWorkerDeliver_RetriesWithBackoff(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	cfg := &config.Config{WebhookURL: server.URL, WebhookTimeout: time.Second, WebhookMaxRetries: 3, WebhookBaseDelay: 100 * time.Millisecond}
	worker, _, delays := newTestWorker(t, cfg)

	ok := worker.Deliver(context.Background(), Event{Event: "new-incident"}, []byte(`{}`))

	assert.True(t, ok)
	assert.EqualValues(t, 3, calls.Load())
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, *delays)
}

func TestWorkerDeliver_GivesUp(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := &config.Config{WebhookURL: server.URL, WebhookTimeout: time.Second, WebhookMaxRetries: 2, WebhookBaseDelay: time.Millisecond}
	worker, buf, _ := newTestWorker(t, cfg)

	ok := worker.Deliver(context.Background(), Event{Event: "newIncident"}, []byte(`{}`))

	assert.False(t, ok)
	assert.EqualValues(t, 2, calls.Load())
	assert.Contains(t, buf.String(), "Failed to deliver webhook for event after 2 attempts.")
}

func TestWorkerDeliver_NoURL(t *testing.T) {
	worker, buf, _ := newTestWorker(t, &config.Config{WebhookMaxRetries: 3})

	ok := worker.Deliver(context.Background(), Event{Event: "newIncident"}, []byte(`{}`))

	assert.False(t, ok)
	assert.Contains(t, buf.String(), "Webhook URL is not configured")
}

func TestSign(t *testing.T) {
	assert.Equal(t, Sign([]byte("payload"), "key"), Sign([]byte("payload"), "key"))
	assert.NotEqual(t, Sign([]byte("payload"), "key"), Sign([]byte("payload"), "other"))
	assert.Len(t, Sign([]byte("payload"), "key"), 64)
}
