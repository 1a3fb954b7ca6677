package ws

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Presence flips the durable online flag when a user connects or drops.
type Presence interface {
	SetOnline(ctx context.Context, userID int64, online bool) error
}

// ConversationSource lists the conversations a freshly connected client is
// automatically joined to.
type ConversationSource interface {
	ListActiveIDs(ctx context.Context, userID int64) ([]int64, error)
}

// ReadMarker lets clients acknowledge reads over the socket; the messaging
// service pushes the resulting receipt back through the notifier.
type ReadMarker interface {
	MarkRead(ctx context.Context, userID, conversationID int64) (int64, error)
}

// Hub tracks one live client per user and routes events to them. A second
// connection for the same user replaces the first.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]*Client

	presence Presence
	convs    ConversationSource
	marker   ReadMarker
	log      *zap.Logger
}

func NewHub(presence Presence, convs ConversationSource, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:  make(map[int64]*Client),
		presence: presence,
		convs:    convs,
		log:      log,
	}
}

// AttachReadMarker wires the mark_read socket command; optional.
func (h *Hub) AttachReadMarker(marker ReadMarker) {
	h.marker = marker
}

// Register makes the client the live connection for its user, joins it to
// the user's active conversations and announces presence.
func (h *Hub) Register(ctx context.Context, client *Client) {
	h.mu.Lock()
	old := h.clients[client.userID]
	h.clients[client.userID] = client
	h.mu.Unlock()

	if old != nil {
		old.shutdown()
	}

	if h.convs != nil {
		ids, err := h.convs.ListActiveIDs(ctx, client.userID)
		if err != nil {
			h.log.Warn("ws: auto-join failed", zap.Int64("user_id", client.userID), zap.Error(err))
		}
		for _, id := range ids {
			client.Join(id)
		}
	}

	if h.presence != nil {
		if err := h.presence.SetOnline(ctx, client.userID, true); err != nil {
			h.log.Warn("ws: set online failed", zap.Int64("user_id", client.userID), zap.Error(err))
		}
	}
	h.broadcastPresence(client.userID, "online")

	h.log.Info("ws: client connected",
		zap.Int64("user_id", client.userID),
		zap.String("conn_id", client.connID),
		zap.Int("total", h.count()))
}

// Unregister drops the client if it is still the live connection for its
// user. A stale connection replaced by a newer one leaves presence alone.
func (h *Hub) Unregister(ctx context.Context, client *Client) {
	h.mu.Lock()
	current, ok := h.clients[client.userID]
	if !ok || current.connID != client.connID {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.userID)
	h.mu.Unlock()

	client.shutdown()

	if h.presence != nil {
		if err := h.presence.SetOnline(ctx, client.userID, false); err != nil {
			h.log.Warn("ws: set offline failed", zap.Int64("user_id", client.userID), zap.Error(err))
		}
	}
	h.broadcastPresence(client.userID, "offline")

	h.log.Info("ws: client disconnected",
		zap.Int64("user_id", client.userID),
		zap.Int("total", h.count()))
}

// SendToUser delivers an event to the user's live client, if any. A full
// send buffer drops the event rather than blocking the caller.
func (h *Hub) SendToUser(userID int64, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Warn("ws: marshal event failed", zap.Error(err))
		return
	}

	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	client.enqueue(data)
}

// Subscribe joins the user's live client to a conversation so later typing
// relays reach it. No-op when the user is offline.
func (h *Hub) Subscribe(userID, conversationID int64) {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()
	if ok {
		client.Join(conversationID)
	}
}

// IsOnline reports whether the user currently holds a live connection.
func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// relayTyping forwards a typing state change to every other member of the
// conversation.
func (h *Hub) relayTyping(sender *Client, conversationID int64, start bool) {
	eventType := EventTypeUserStopTyping
	if start {
		eventType = EventTypeUserTyping
	}
	event, err := NewEvent(eventType, TypingPayload{
		ConversationID: conversationID,
		UserID:         sender.userID,
	})
	if err != nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.userID == sender.userID || !client.Joined(conversationID) {
			continue
		}
		client.enqueue(data)
	}
}

func (h *Hub) broadcastPresence(userID int64, status string) {
	event, err := NewEvent(EventTypeUserOnline, PresencePayload{UserID: userID, Status: status})
	if err != nil {
		return
	}
	if status == "offline" {
		event.Type = EventTypeUserOffline
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.userID == userID {
			continue
		}
		client.enqueue(data)
	}
}

func (h *Hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
