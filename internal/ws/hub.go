package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"elite-gym/internal/funnel"
	"elite-gym/pkg/logging"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer    = 64
	publishBuffer = 1024
)

// Event types pushed to subscribers.
const (
	EventSnapshot = "snapshot"
	EventSession  = "session_event"
	EventHandoff  = "handoff"
)

// Client is one browser connection following a single session.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	sessionID string
	send      chan []byte
}

type envelope struct {
	sessionID string
	payload   []byte
}

// Hub fans session events out to the connections subscribed to each
// session. Publishing never blocks: when the hub is behind, the event is
// dropped and the client catches up from the next snapshot it fetches.
type Hub struct {
	clients    map[string]map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	upgrader   websocket.Upgrader
	logger     *logging.Logger

	mu sync.Mutex
}

func NewHub(allowedOrigins []string, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		broadcast:  make(chan envelope, publishBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]map[*Client]bool),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger.With("component", "ws"),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// Run serves registrations and fan-out until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		case client := <-h.register:
			h.mu.Lock()
			subs, ok := h.clients[client.sessionID]
			if !ok {
				subs = make(map[*Client]bool)
				h.clients[client.sessionID] = subs
			}
			subs[client] = true
			h.mu.Unlock()
			h.logger.Debug("websocket client registered", "session_id", client.sessionID)
		case client := <-h.unregister:
			h.mu.Lock()
			h.drop(client)
			h.mu.Unlock()
			h.logger.Debug("websocket client unregistered", "session_id", client.sessionID)
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[msg.sessionID] {
				select {
				case client.send <- msg.payload:
				default:
					h.drop(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop removes a client. Caller holds mu.
func (h *Hub) drop(client *Client) {
	subs, ok := h.clients[client.sessionID]
	if !ok || !subs[client] {
		return
	}
	delete(subs, client)
	close(client.send)
	if len(subs) == 0 {
		delete(h.clients, client.sessionID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, subs := range h.clients {
		for client := range subs {
			h.drop(client)
		}
	}
}

// Subscribers reports how many connections follow a session.
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[sessionID])
}

type WSEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func encode(eventType string, data interface{}) ([]byte, error) {
	return json.Marshal(WSEvent{Type: eventType, Data: data})
}

// SendEvent queues an event for every subscriber of sessionID.
func (h *Hub) SendEvent(sessionID, eventType string, data interface{}) {
	payload, err := encode(eventType, data)
	if err != nil {
		h.logger.Error("marshal websocket event", "type", eventType, "error", err)
		return
	}
	select {
	case h.broadcast <- envelope{sessionID: sessionID, payload: payload}:
	default:
		h.logger.Warn("websocket hub saturated, event dropped", "session_id", sessionID, "type", eventType)
	}
}

// Publish forwards funnel events.
func (h *Hub) Publish(sessionID string, ev funnel.Event) {
	h.SendEvent(sessionID, EventSession, ev)
}

// PublishHandoff pushes the click-to-chat link for a finished lead.
func (h *Hub) PublishHandoff(sessionID, link string) {
	h.SendEvent(sessionID, EventHandoff, map[string]string{"url": link})
}

// ServeWs upgrades the request and subscribes it to sessionID. initial, if
// not nil, is the first event the client receives.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request, sessionID string, initial interface{}) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "session_id", sessionID, "error", err)
		return
	}
	client := &Client{hub: h, conn: conn, sessionID: sessionID, send: make(chan []byte, sendBuffer)}
	if initial != nil {
		if payload, err := encode(EventSnapshot, initial); err == nil {
			client.send <- payload
		}
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		// Inbound frames are ignored; reading keeps control frames flowing.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
