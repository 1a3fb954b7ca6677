package ws

import (
	"go.uber.org/zap"

	"github.com/Princeaman007/agence/internal/domain/model"
)

// HubNotifier implements messaging.Notifier on top of the Hub. Every method
// is fire-and-forget: an offline user is skipped and errors are logged, the
// triggering write already committed.
type HubNotifier struct {
	hub *Hub
	log *zap.Logger
}

func NewHubNotifier(hub *Hub, log *zap.Logger) *HubNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &HubNotifier{hub: hub, log: log}
}

func (n *HubNotifier) NewMessage(recipientID int64, msg model.Message) {
	event, err := NewEvent(EventTypeNewMessage, MessagePayload{Message: msg})
	if err != nil {
		n.log.Warn("ws notifier: marshal failed", zap.Error(err))
		return
	}
	// Keep the recipient joined so typing relays for this conversation
	// reach them even when the conversation was created just now.
	n.hub.Subscribe(recipientID, msg.ConversationID)
	n.hub.SendToUser(recipientID, event)
}

func (n *HubNotifier) MessageSent(senderID int64, msg model.Message) {
	event, err := NewEvent(EventTypeMessageSent, MessagePayload{Message: msg})
	if err != nil {
		n.log.Warn("ws notifier: marshal failed", zap.Error(err))
		return
	}
	n.hub.Subscribe(senderID, msg.ConversationID)
	n.hub.SendToUser(senderID, event)
}

func (n *HubNotifier) MessagesRead(participantID int64, conversationID, readerID int64) {
	event, err := NewEvent(EventTypeMessagesRead, ReadPayload{
		ConversationID: conversationID,
		ReaderID:       readerID,
	})
	if err != nil {
		n.log.Warn("ws notifier: marshal failed", zap.Error(err))
		return
	}
	n.hub.SendToUser(participantID, event)
}
