package ws

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"
)

type fakePresence struct {
	state map[int64]bool
}

func (p *fakePresence) SetOnline(_ context.Context, userID int64, online bool) error {
	p.state[userID] = online
	return nil
}

type fakeConvSource struct {
	ids map[int64][]int64
}

func (s *fakeConvSource) ListActiveIDs(_ context.Context, userID int64) ([]int64, error) {
	return s.ids[userID], nil
}

func newHubForTest() (*Hub, *fakePresence, *fakeConvSource) {
	presence := &fakePresence{state: map[int64]bool{}}
	convs := &fakeConvSource{ids: map[int64][]int64{}}
	return NewHub(presence, convs, zap.NewNop()), presence, convs
}

func drain(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case data := <-c.send:
		var event Event
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("bad event payload: %v", err)
		}
		return event
	default:
		t.Fatalf("no event queued")
		return Event{}
	}
}

func TestRegisterAutoJoinsAndSetsOnline(t *testing.T) {
	hub, presence, convs := newHubForTest()
	convs.ids[1] = []int64{10, 11}

	client := NewClient(hub, nil, 1)
	hub.Register(context.Background(), client)

	if !client.Joined(10) || !client.Joined(11) {
		t.Fatalf("client was not joined to its active conversations")
	}
	if !presence.state[1] {
		t.Fatalf("online flag was not set")
	}
	if !hub.IsOnline(1) {
		t.Fatalf("hub does not report the user online")
	}
}

func TestLastConnectWins(t *testing.T) {
	hub, presence, _ := newHubForTest()
	ctx := context.Background()

	first := NewClient(hub, nil, 1)
	second := NewClient(hub, nil, 1)
	hub.Register(ctx, first)
	hub.Register(ctx, second)

	select {
	case <-first.done:
	default:
		t.Fatalf("stale connection was not shut down")
	}

	// The stale connection's unregister must not knock the new one offline.
	hub.Unregister(ctx, first)
	if !hub.IsOnline(1) || !presence.state[1] {
		t.Fatalf("stale unregister took the user offline")
	}

	hub.Unregister(ctx, second)
	if hub.IsOnline(1) || presence.state[1] {
		t.Fatalf("live unregister should take the user offline")
	}
}

func TestSendToUser(t *testing.T) {
	hub, _, _ := newHubForTest()
	ctx := context.Background()

	// Offline recipient is a silent no-op.
	event, err := NewEvent(EventTypeNewMessage, map[string]int{"id": 1})
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	hub.SendToUser(99, event)

	client := NewClient(hub, nil, 2)
	hub.Register(ctx, client)
	hub.SendToUser(2, event)

	got := drain(t, client)
	if got.Type != EventTypeNewMessage {
		t.Fatalf("expected %s, got %s", EventTypeNewMessage, got.Type)
	}
}

func TestTypingRelayExcludesSenderAndOutsiders(t *testing.T) {
	hub, _, convs := newHubForTest()
	ctx := context.Background()
	convs.ids[1] = []int64{10}
	convs.ids[2] = []int64{10}

	sender := NewClient(hub, nil, 1)
	member := NewClient(hub, nil, 2)
	outsider := NewClient(hub, nil, 3)
	hub.Register(ctx, sender)
	hub.Register(ctx, member)
	hub.Register(ctx, outsider)

	// Drop queued presence events before relaying.
	for _, c := range []*Client{sender, member, outsider} {
		for len(c.send) > 0 {
			<-c.send
		}
	}

	hub.relayTyping(sender, 10, true)

	got := drain(t, member)
	if got.Type != EventTypeUserTyping {
		t.Fatalf("expected %s, got %s", EventTypeUserTyping, got.Type)
	}
	var payload TypingPayload
	if err := json.Unmarshal(got.Payload, &payload); err != nil {
		t.Fatalf("bad typing payload: %v", err)
	}
	if payload.UserID != 1 || payload.ConversationID != 10 {
		t.Fatalf("unexpected typing payload: %+v", payload)
	}

	if len(sender.send) != 0 {
		t.Fatalf("typing relay echoed to the sender")
	}
	if len(outsider.send) != 0 {
		t.Fatalf("typing relay reached a non-member")
	}
}

func TestPresenceBroadcastReachesOthers(t *testing.T) {
	hub, _, _ := newHubForTest()
	ctx := context.Background()

	watcher := NewClient(hub, nil, 1)
	hub.Register(ctx, watcher)

	joined := NewClient(hub, nil, 2)
	hub.Register(ctx, joined)

	got := drain(t, watcher)
	if got.Type != EventTypeUserOnline {
		t.Fatalf("expected %s, got %s", EventTypeUserOnline, got.Type)
	}

	hub.Unregister(ctx, joined)
	got = drain(t, watcher)
	if got.Type != EventTypeUserOffline {
		t.Fatalf("expected %s, got %s", EventTypeUserOffline, got.Type)
	}
}
