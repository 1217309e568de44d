package broadcast

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/resqsphere/internal/webhook"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	hub := NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	router := gin.New()
	router.GET("/ws", NewHandler(hub, nil, logger).ServeWS)
	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		cancel()
	})
	return hub, server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	// Подготовка
	hub, server := newTestHub(t)
	first, second := dial(t, server), dial(t, server)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	// Действие
	hub.Broadcast(context.Background(), Envelope{Event: "statsUpdate", Data: json.RawMessage(`{"total":3}`)})

	// Проверки
	for _, conn := range []*websocket.Conn{first, second} {
		env := readEnvelope(t, conn)
		assert.Equal(t, "statsUpdate", env.Event)
		assert.JSONEq(t, `{"total":3}`, string(env.Data))
	}
}

func TestHub_RoomMessagesOnlyReachMembers(t *testing.T) {
	hub, server := newTestHub(t)
	admin, civilian := dial(t, server), dial(t, server)

	require.NoError(t, admin.WriteJSON(clientMessage{Type: messageJoinRoom, Room: "admin"}))
	require.Eventually(t, func() bool { return hub.RoomSize("admin") == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast(context.Background(), Envelope{Event: "incident-assigned", Room: "admin", Data: json.RawMessage(`{}`)})
	hub.Broadcast(context.Background(), Envelope{Event: "statsUpdate", Data: json.RawMessage(`{}`)})

	assert.Equal(t, "incident-assigned", readEnvelope(t, admin).Event)
	assert.Equal(t, "statsUpdate", readEnvelope(t, admin).Event)
	// участник вне комнаты получает только общее сообщение
	assert.Equal(t, "statsUpdate", readEnvelope(t, civilian).Event)
}

func TestHub_LeaveRoom(t *testing.T) {
	hub, server := newTestHub(t)
	conn := dial(t, server)

	require.NoError(t, conn.WriteJSON(clientMessage{Type: messageJoinRoom, Room: "admin"}))
	require.Eventually(t, func() bool { return hub.RoomSize("admin") == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, conn.WriteJSON(clientMessage{Type: messageLeaveRoom, Room: "admin"}))

	assert.Eventually(t, func() bool { return hub.RoomSize("admin") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub, server := newTestHub(t)
	conn := dial(t, server)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

type recordingQueue struct {
	mu     sync.Mutex
	events []webhook.Event
}

func (q *recordingQueue) Enqueue(_ context.Context, event webhook.Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, event)
	return nil
}

func TestGateway_PublishWithoutRedis(t *testing.T) {
	// Подготовка
	hub, server := newTestHub(t)
	conn := dial(t, server)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	queue := &recordingQueue{}
	gateway := NewGateway(hub, logrus.New(), WithWebhooks(queue, []string{"newIncident"}))

	// Действие
	require.NoError(t, gateway.Publish(context.Background(), "incidentUpdate", map[string]string{"status": "resolved"}))
	require.NoError(t, gateway.Publish(context.Background(), "newIncident", map[string]string{"title": "Fire Alarm"}))

	// Проверки
	first := readEnvelope(t, conn)
	assert.Equal(t, "incidentUpdate", first.Event)
	assert.JSONEq(t, `{"status":"resolved"}`, string(first.Data))
	assert.Equal(t, "newIncident", readEnvelope(t, conn).Event)

	queue.mu.Lock()
	defer queue.mu.Unlock()
	require.Len(t, queue.events, 1)
	assert.Equal(t, "newIncident", queue.events[0].Event)
	assert.JSONEq(t, `{"title":"Fire Alarm"}`, string(queue.events[0].Payload))
}

func TestGateway_PublishRejectsUnmarshalablePayload(t *testing.T) {
	gateway := NewGateway(NewHub(logrus.New()), logrus.New())

	err := gateway.Publish(context.Background(), "statsUpdate", make(chan int))

	assert.ErrorContains(t, err, "broadcast: marshal statsUpdate payload")
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://localhost:3000/"})

	request := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	assert.True(t, check(request("http://localhost:3000")))
	assert.True(t, check(request("")))
	assert.False(t, check(request("http://evil.example")))
	assert.True(t, originChecker(nil)(request("http://evil.example")))
	assert.True(t, originChecker([]string{"*"})(request("http://any.example")))
}

func TestRelay_KeepsRetryingUntilCancelled(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	// на этом адресе никто не слушает, подписка каждый раз падает
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	gw := NewGateway(NewHub(logger), logger, WithRedis(client))
	gw.retryDelay = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		gw.Relay(ctx)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("relay stopped on subscribe error")
	case <-time.After(150 * time.Millisecond):
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop after cancel")
	}
}

func TestRelay_NoRedisReturnsImmediately(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	gw := NewGateway(NewHub(logger), logger)

	assert.NotPanics(t, func() { gw.Relay(context.Background()) })
}
