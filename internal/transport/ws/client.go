package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256
)

// Client is a single WebSocket connection. connID distinguishes it from a
// newer connection of the same user during unregister.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID int64
	connID string

	mu     sync.RWMutex
	joined map[int64]struct{}

	send     chan []byte
	done     chan struct{}
	shutOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		connID: uuid.NewString(),
		joined: make(map[int64]struct{}),
		send:   make(chan []byte, sendBufSize),
		done:   make(chan struct{}),
	}
}

func (c *Client) Join(conversationID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.joined[conversationID] = struct{}{}
}

func (c *Client) Leave(conversationID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.joined, conversationID)
}

func (c *Client) Joined(conversationID int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.joined[conversationID]
	return ok
}

// ReadPump reads client events until the connection drops, then unregisters.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(ctx, c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		if err := wsjson.Read(ctx, c.conn, &event); err != nil {
			if websocket.CloseStatus(err) == -1 {
				c.hub.log.Debug("ws: read error", zap.Int64("user_id", c.userID), zap.Error(err))
			}
			return
		}
		c.handleEvent(ctx, &event)
	}
}

// WritePump drains the send buffer onto the socket and keeps the
// connection alive with pings.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-c.done:
			return

		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) handleEvent(ctx context.Context, event *Event) {
	switch event.Type {
	case EventTypeJoinConversation:
		var p ConversationPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("invalid_payload", "invalid join_conversation payload")
			return
		}
		c.Join(p.ConversationID)

	case EventTypeLeaveConversation:
		var p ConversationPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("invalid_payload", "invalid leave_conversation payload")
			return
		}
		c.Leave(p.ConversationID)

	case EventTypeTyping, EventTypeStopTyping:
		var p ConversationPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("invalid_payload", "conversation_id required for typing events")
			return
		}
		c.hub.relayTyping(c, p.ConversationID, event.Type == EventTypeTyping)

	case EventTypeMarkRead:
		if c.hub.marker == nil {
			c.sendError("unsupported", "mark_read is not available")
			return
		}
		var p ConversationPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			c.sendError("invalid_payload", "invalid mark_read payload")
			return
		}
		if _, err := c.hub.marker.MarkRead(ctx, c.userID, p.ConversationID); err != nil {
			c.sendError("mark_read_failed", err.Error())
		}

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("unknown_event", "unknown event type: "+event.Type)
	}
}

// enqueue queues outbound data, dropping it when the buffer is full.
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}

// shutdown stops the write pump; safe to call more than once.
func (c *Client) shutdown() {
	c.shutOnce.Do(func() {
		close(c.done)
	})
}

func (c *Client) sendPong() {
	data, err := json.Marshal(Event{Type: EventTypePong, Timestamp: time.Now().Unix()})
	if err != nil {
		return
	}
	c.enqueue(data)
}

func (c *Client) sendError(code, message string) {
	event, err := NewEvent(EventTypeError, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	c.enqueue(data)
}
