package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"elite-gym/internal/funnel"
	"elite-gym/pkg/logging"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil, logging.New("error"))
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/ws/")
		hub.ServeWs(w, r, id, map[string]string{"id": id})
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestSubscriberReceivesSnapshotThenEvents(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "s1")

	first := readEvent(t, conn)
	assert.JSONEq(t, `"snapshot"`, string(first["type"]))
	assert.JSONEq(t, `{"id":"s1"}`, string(first["data"]))

	require.Eventually(t, func() bool { return hub.Subscribers("s1") == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish("s2", funnel.Event{Type: funnel.EventReset, State: funnel.StateGreeting})
	hub.Publish("s1", funnel.Event{Type: funnel.EventState, State: funnel.StateCollectingName})

	ev := readEvent(t, conn)
	assert.JSONEq(t, `"session_event"`, string(ev["type"]))
	assert.JSONEq(t, `{"type":"state","state":"collecting_name"}`, string(ev["data"]))

	hub.PublishHandoff("s1", "https://wa.me/573116248414?text=hola")
	ev = readEvent(t, conn)
	assert.JSONEq(t, `"handoff"`, string(ev["type"]))
	assert.JSONEq(t, `{"url":"https://wa.me/573116248414?text=hola"}`, string(ev["data"]))
}

func TestDisconnectUnsubscribes(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "s1")
	readEvent(t, conn)
	require.Eventually(t, func() bool { return hub.Subscribers("s1") == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Subscribers("s1") == 0 }, time.Second, 10*time.Millisecond)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://elitegym.co"})

	allowed := httptest.NewRequest(http.MethodGet, "/ws/x", nil)
	allowed.Header.Set("Origin", "https://elitegym.co")
	assert.True(t, check(allowed))

	denied := httptest.NewRequest(http.MethodGet, "/ws/x", nil)
	denied.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(denied))

	assert.True(t, originChecker(nil)(denied))
	assert.True(t, originChecker([]string{"*"})(denied))
}
