package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"relgraph/config"
	"relgraph/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryQueue struct {
	mu     sync.Mutex
	events map[uint][][]byte
}

func newMemoryQueue() *memoryQueue {
	return &memoryQueue{events: make(map[uint][][]byte)}
}

func (q *memoryQueue) Push(_ context.Context, userID uint, event []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events[userID] = append(q.events[userID], event)
	return nil
}

func (q *memoryQueue) Drain(_ context.Context, userID uint) ([][]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events[userID]
	delete(q.events, userID)
	return out, nil
}

func (q *memoryQueue) len(userID uint) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events[userID])
}

func TestSendToOnlineUser(t *testing.T) {
	m := NewManager(nil, nil)
	client := NewClient(1, nil)
	m.AddClient(client)
	assert.True(t, m.IsOnline(1))

	m.SendToUser(1, []byte("hello"))
	assert.Equal(t, "hello", string(<-client.Send))

	m.RemoveClient(client)
	assert.False(t, m.IsOnline(1))
	_, open := <-client.Send
	assert.False(t, open)
}

func TestOfflineEventsAreQueuedAndFlushed(t *testing.T) {
	q := newMemoryQueue()
	m := NewManager(q, nil)

	m.SendToUser(2, []byte("a"))
	m.SendToUser(2, []byte("b"))
	assert.Eventually(t, func() bool { return q.len(2) == 2 }, time.Second, 5*time.Millisecond)

	client := NewClient(2, nil)
	m.AddClient(client)
	got := []string{string(<-client.Send), string(<-client.Send)}
	assert.ElementsMatch(t, []string{"a", "b"}, got)
	assert.Zero(t, q.len(2))
}

func TestReplacedClientIsNotRemovedByStaleDisconnect(t *testing.T) {
	m := NewManager(nil, nil)
	first := NewClient(3, nil)
	second := NewClient(3, nil)
	m.AddClient(first)
	m.AddClient(second)

	m.RemoveClient(first)
	assert.True(t, m.IsOnline(3))
	assert.Equal(t, 1, m.OnlineCount())
}

func TestHandlerPushesEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtSvc := jwt.NewJWTService(config.JWTConfig{Secret: "ws-test-secret", Issuer: "relgraph"})
	m := NewManager(nil, nil)

	r := gin.New()
	r.GET("/ws", m.Handler(jwtSvc, config.WebSocketConfig{PingInterval: time.Second, ReadTimeout: 5 * time.Second}))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	token, err := jwtSvc.GenerateToken(9, nil)
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial(url+"?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return m.IsOnline(9) }, time.Second, 5*time.Millisecond)
	m.SendToUser(9, []byte(`{"type":"relationship"}`))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"relationship"}`, string(msg))
}
