package chat

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
)

// Upgrader upgrades chat websocket requests. Origins are checked by the CORS layer.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Event is pushed to websocket subscribers.
type Event struct {
	Type           string      `json:"type"`
	ConversationID string      `json:"conversationId"`
	Payload        interface{} `json:"payload,omitempty"`
}

const (
	EventNewMessage = "new_message"
	EventTyping     = "typing"
)

type subscriber struct {
	conversationID string
	senderID       string
	conn           *websocket.Conn
	send           chan []byte
}

// Hub tracks live websocket subscribers per conversation.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]bool
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{subs: make(map[string]map[*subscriber]bool), logger: logger}
}

func (h *Hub) register(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[s.conversationID]
	if !ok {
		set = make(map[*subscriber]bool)
		h.subs[s.conversationID] = set
	}
	set[s] = true
}

func (h *Hub) unregister(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[s.conversationID]
	if !ok || !set[s] {
		return
	}
	delete(set, s)
	close(s.send)
	if len(set) == 0 {
		delete(h.subs, s.conversationID)
	}
}

// Subscribers counts live connections on a conversation.
func (h *Hub) Subscribers(conversationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[conversationID])
}

// Publish sends event to every subscriber of the conversation. Slow clients are skipped.
func (h *Hub) Publish(conversationID string, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal chat event", zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[conversationID] {
		select {
		case s.send <- data:
		default:
		}
	}
}

// ServeWS attaches conn to the conversation and blocks until it disconnects.
func (h *Hub) ServeWS(conn *websocket.Conn, conversationID, senderID string) {
	s := &subscriber{
		conversationID: conversationID,
		senderID:       senderID,
		conn:           conn,
		send:           make(chan []byte, 64),
	}
	h.register(s)
	go h.writePump(s)
	h.readPump(s)
}

func (h *Hub) readPump(s *subscriber) {
	defer func() {
		h.unregister(s)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMsgSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		var in struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &in); err != nil {
			continue
		}
		if in.Type == EventTyping {
			h.Publish(s.conversationID, &Event{
				Type:           EventTyping,
				ConversationID: s.conversationID,
				Payload:        map[string]string{"sender": s.senderID},
			})
		}
	}
}

func (h *Hub) writePump(s *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
