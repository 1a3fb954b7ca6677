package messaging

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Princeaman007/agence/internal/domain/enums"
	"github.com/Princeaman007/agence/internal/domain/model"
	pgrepo "github.com/Princeaman007/agence/internal/repo/postgres"
	quotasvc "github.com/Princeaman007/agence/internal/services/quota"
)

type fakeConvStore struct {
	convs  map[int64]*model.Conversation
	nextID int64
}

func (s *fakeConvStore) GetOrCreate(_ context.Context, _ pgx.Tx, a, b int64) (model.Conversation, error) {
	low, high := model.CanonicalPair(a, b)
	for _, c := range s.convs {
		if c.UserLowID == low && c.UserHighID == high {
			return *c, nil
		}
	}
	s.nextID++
	c := &model.Conversation{
		ID:         s.nextID,
		UserLowID:  low,
		UserHighID: high,
		Status:     enums.ConversationStatusActive,
	}
	s.convs[c.ID] = c
	return *c, nil
}

func (s *fakeConvStore) GetByID(_ context.Context, conversationID int64) (model.Conversation, error) {
	c, ok := s.convs[conversationID]
	if !ok {
		return model.Conversation{}, pgrepo.ErrConversationNotFound
	}
	return *c, nil
}

func (s *fakeConvStore) ListActive(_ context.Context, userID int64) ([]model.Conversation, error) {
	var out []model.Conversation
	for _, c := range s.convs {
		if c.Status == enums.ConversationStatusActive && c.HasParticipant(userID) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeConvStore) RecordMessage(_ context.Context, _ pgx.Tx, conversationID, senderID, recipientID int64, content string, at time.Time) error {
	c, ok := s.convs[conversationID]
	if !ok {
		return pgrepo.ErrConversationNotFound
	}
	c.LastMessageContent = content
	c.LastMessageSenderID = senderID
	c.LastMessageAt = &at
	if c.UserLowID == recipientID {
		c.UnreadLow++
	} else {
		c.UnreadHigh++
	}
	return nil
}

func (s *fakeConvStore) ResetUnread(_ context.Context, _ pgx.Tx, conversationID, userID int64) error {
	c, ok := s.convs[conversationID]
	if !ok {
		return pgrepo.ErrConversationNotFound
	}
	if c.UserLowID == userID {
		c.UnreadLow = 0
	} else {
		c.UnreadHigh = 0
	}
	return nil
}

func (s *fakeConvStore) Archive(_ context.Context, conversationID int64) error {
	c, ok := s.convs[conversationID]
	if !ok {
		return pgrepo.ErrConversationNotFound
	}
	c.Status = enums.ConversationStatusArchived
	return nil
}

type fakeMsgStore struct {
	msgs   map[int64]*model.Message
	nextID int64
	now    time.Time
}

func (s *fakeMsgStore) Create(_ context.Context, _ pgx.Tx, msg model.Message) (model.Message, error) {
	s.nextID++
	msg.ID = s.nextID
	msg.CreatedAt = s.now
	stored := msg
	s.msgs[msg.ID] = &stored
	return msg, nil
}

func (s *fakeMsgStore) GetByID(_ context.Context, messageID int64) (model.Message, error) {
	m, ok := s.msgs[messageID]
	if !ok {
		return model.Message{}, pgrepo.ErrMessageNotFound
	}
	return *m, nil
}

func (s *fakeMsgStore) ListPage(_ context.Context, conversationID, viewerID int64, _, _ int) ([]model.Message, error) {
	var out []model.Message
	for _, m := range s.msgs {
		if m.ConversationID == conversationID && !m.DeletedFor(viewerID) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeMsgStore) MarkConversationRead(_ context.Context, _ pgx.Tx, conversationID, readerID int64, at time.Time) (int64, error) {
	var marked int64
	for _, m := range s.msgs {
		if m.ConversationID == conversationID && m.RecipientID == readerID && !m.IsRead {
			m.IsRead = true
			readAt := at
			m.ReadAt = &readAt
			marked++
		}
	}
	return marked, nil
}

func (s *fakeMsgStore) SoftDelete(_ context.Context, messageID, userID int64) error {
	m, ok := s.msgs[messageID]
	if !ok {
		return pgrepo.ErrMessageNotFound
	}
	if !m.DeletedFor(userID) {
		m.DeletedBy = append(m.DeletedBy, userID)
	}
	return nil
}

type fakeQuotaStore struct {
	used map[string]int
}

func (s *fakeQuotaStore) ConsumeMessageWithLimit(_ context.Context, _ pgx.Tx, userID int64, dayKey, _ string, limit int) (int, error) {
	key := fmt.Sprintf("%d@%s", userID, dayKey)
	if s.used[key] >= limit {
		return 0, pgrepo.ErrMessagesLimitReached
	}
	s.used[key]++
	return s.used[key], nil
}

func (s *fakeQuotaStore) total() int {
	sum := 0
	for _, v := range s.used {
		sum += v
	}
	return sum
}

type fakeUserStore struct {
	users map[int64]model.User
}

func (s *fakeUserStore) FindByID(_ context.Context, userID int64) (model.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return user, nil
}

type fakeBlockStore struct {
	pairs map[[2]int64]bool
}

func (s *fakeBlockStore) IsBlockedEither(_ context.Context, a, b int64) (bool, error) {
	return s.pairs[[2]int64{a, b}] || s.pairs[[2]int64{b, a}], nil
}

type fakeLimitsProvider struct {
	free quotasvc.MessageLimits
}

func (p *fakeLimitsProvider) MessageLimitsFor(_ context.Context, user model.User, _ string) (quotasvc.MessageLimits, error) {
	if user.AccountType.Paid() {
		return quotasvc.MessageLimits{Limit: -1, Used: -1, Remaining: -1, Unlimited: true}, nil
	}
	return p.free, nil
}

type fakeNotifier struct {
	newMessages []int64
	acked       []int64
	reads       [][3]int64
}

func (n *fakeNotifier) NewMessage(recipientID int64, _ model.Message) {
	n.newMessages = append(n.newMessages, recipientID)
}

func (n *fakeNotifier) MessageSent(senderID int64, _ model.Message) {
	n.acked = append(n.acked, senderID)
}

func (n *fakeNotifier) MessagesRead(participantID int64, conversationID, readerID int64) {
	n.reads = append(n.reads, [3]int64{participantID, conversationID, readerID})
}

type testDeps struct {
	convs    *fakeConvStore
	msgs     *fakeMsgStore
	quotas   *fakeQuotaStore
	users    *fakeUserStore
	blocks   *fakeBlockStore
	notifier *fakeNotifier
}

func newServiceForTest() (*Service, *testDeps) {
	deps := &testDeps{
		convs:  &fakeConvStore{convs: map[int64]*model.Conversation{}},
		msgs:   &fakeMsgStore{msgs: map[int64]*model.Message{}, now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		quotas: &fakeQuotaStore{used: map[string]int{}},
		users: &fakeUserStore{users: map[int64]model.User{
			1: {ID: 1, Name: "Alice", AccountType: enums.AccountTypeFree, Timezone: "Europe/Paris"},
			2: {ID: 2, Name: "Bruno", AccountType: enums.AccountTypePremium, IsOnline: true},
			3: {ID: 3, Name: "Chloe", AccountType: enums.AccountTypeFree},
		}},
		blocks:   &fakeBlockStore{pairs: map[[2]int64]bool{}},
		notifier: &fakeNotifier{},
	}

	svc := NewService(nil, deps.convs, deps.msgs, deps.quotas, deps.users, deps.blocks,
		&fakeLimitsProvider{free: quotasvc.MessageLimits{Limit: 5, Used: 2, Remaining: 3}},
		Config{FreeMessagesPerDay: 5, MessageMaxLength: 2000, DefaultTimezone: "UTC"})
	svc.AttachTxRunner(func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
		return fn(ctx, nil)
	})
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	svc.AttachNotifier(deps.notifier)
	return svc, deps
}

func TestSendPreconditionsLeaveNoTrace(t *testing.T) {
	svc, deps := newServiceForTest()
	ctx := context.Background()

	cases := []struct {
		name  string
		setup func()
		input SendInput
		want  error
	}{
		{"empty content", nil, SendInput{RecipientID: 2, Content: "   "}, ErrValidation},
		{"content too long", nil, SendInput{RecipientID: 2, Content: strings.Repeat("a", 2001)}, ErrValidation},
		{"unknown type", nil, SendInput{RecipientID: 2, Content: "hi", Type: "voice"}, ErrValidation},
		{"unknown recipient", nil, SendInput{RecipientID: 99, Content: "hi"}, ErrRecipientNotFound},
		{"self message", nil, SendInput{RecipientID: 1, Content: "hi"}, ErrSelfMessage},
		{"blocked", func() { deps.blocks.pairs[[2]int64{2, 1}] = true }, SendInput{RecipientID: 2, Content: "hi"}, ErrBlocked},
	}
	for _, tc := range cases {
		if tc.setup != nil {
			tc.setup()
		}
		if _, err := svc.Send(ctx, 1, tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if deps.quotas.total() != 0 || len(deps.msgs.msgs) != 0 || len(deps.convs.convs) != 0 {
			t.Fatalf("%s: rejected send left writes behind", tc.name)
		}
	}
}

func TestSendCreatesConversationAndCountsQuota(t *testing.T) {
	svc, deps := newServiceForTest()

	result, err := svc.Send(context.Background(), 1, SendInput{RecipientID: 2, Content: "  salut Bruno  "})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if result.Message.Content != "salut Bruno" {
		t.Fatalf("content was not trimmed: %q", result.Message.Content)
	}
	if result.Message.Type != enums.MessageTypeText {
		t.Fatalf("expected default text type, got %q", result.Message.Type)
	}
	if result.MessagesRemaining != 4 {
		t.Fatalf("expected 4 messages remaining, got %d", result.MessagesRemaining)
	}

	conv := deps.convs.convs[result.Conversation.ID]
	if conv.UserLowID != 1 || conv.UserHighID != 2 {
		t.Fatalf("pair not stored canonically: %+v", conv)
	}
	if conv.LastMessageContent != "salut Bruno" || conv.LastMessageSenderID != 1 {
		t.Fatalf("snapshot not recorded: %+v", conv)
	}
	if conv.UnreadFor(2) != 1 || conv.UnreadFor(1) != 0 {
		t.Fatalf("unread counter wrong: low=%d high=%d", conv.UnreadLow, conv.UnreadHigh)
	}

	if len(deps.notifier.newMessages) != 1 || deps.notifier.newMessages[0] != 2 {
		t.Fatalf("recipient was not notified: %+v", deps.notifier.newMessages)
	}
	if len(deps.notifier.acked) != 1 || deps.notifier.acked[0] != 1 {
		t.Fatalf("sender ack missing: %+v", deps.notifier.acked)
	}

	// A reply reuses the same conversation row.
	reply, err := svc.Send(context.Background(), 2, SendInput{RecipientID: 1, Content: "salut Alice"})
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if reply.Conversation.ID != result.Conversation.ID {
		t.Fatalf("reply opened a second conversation: %d vs %d", reply.Conversation.ID, result.Conversation.ID)
	}
}

func TestSendFreeTierDailyLimit(t *testing.T) {
	svc, deps := newServiceForTest()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.Send(ctx, 1, SendInput{RecipientID: 2, Content: "hello"}); err != nil {
			t.Fatalf("send %d: %v", i+1, err)
		}
	}

	_, err := svc.Send(ctx, 1, SendInput{RecipientID: 2, Content: "one too many"})
	exceeded, ok := quotasvc.IsExceeded(err)
	if !ok {
		t.Fatalf("expected quota exceeded error, got %v", err)
	}
	if exceeded.Kind != "messages" || exceeded.Limit != 5 || exceeded.Used != 5 {
		t.Fatalf("unexpected exceeded payload: %+v", exceeded)
	}
	if len(deps.msgs.msgs) != 5 {
		t.Fatalf("rejected send stored a message: %d", len(deps.msgs.msgs))
	}
}

func TestSendPremiumIsUnlimited(t *testing.T) {
	svc, deps := newServiceForTest()
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		result, err := svc.Send(ctx, 2, SendInput{RecipientID: 3, Content: "hello"})
		if err != nil {
			t.Fatalf("send %d: %v", i+1, err)
		}
		if result.MessagesRemaining != -1 {
			t.Fatalf("premium sender should be unlimited, got %d", result.MessagesRemaining)
		}
	}
	if deps.quotas.total() != 0 {
		t.Fatalf("premium sends must not touch quotas, consumed %d", deps.quotas.total())
	}
}

func TestMarkReadIsScopedAndIdempotent(t *testing.T) {
	svc, deps := newServiceForTest()
	ctx := context.Background()

	first, err := svc.Send(ctx, 1, SendInput{RecipientID: 2, Content: "hello"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Send(ctx, 1, SendInput{RecipientID: 2, Content: "again"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	if _, err := svc.MarkRead(ctx, 3, first.Conversation.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider should get ErrForbidden, got %v", err)
	}

	marked, err := svc.MarkRead(ctx, 2, first.Conversation.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if marked != 2 {
		t.Fatalf("expected 2 marked messages, got %d", marked)
	}
	if deps.convs.convs[first.Conversation.ID].UnreadFor(2) != 0 {
		t.Fatalf("unread counter was not reset")
	}
	if len(deps.notifier.reads) != 1 || deps.notifier.reads[0] != [3]int64{1, first.Conversation.ID, 2} {
		t.Fatalf("read receipt not pushed to the sender: %+v", deps.notifier.reads)
	}

	again, err := svc.MarkRead(ctx, 2, first.Conversation.ID)
	if err != nil {
		t.Fatalf("second mark read: %v", err)
	}
	if again != 0 {
		t.Fatalf("mark read should be idempotent, marked %d", again)
	}
}

func TestDeleteIsSenderOnlyAndPerUser(t *testing.T) {
	svc, _ := newServiceForTest()
	ctx := context.Background()

	sent, err := svc.Send(ctx, 1, SendInput{RecipientID: 2, Content: "oops"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := svc.Delete(ctx, 2, sent.Message.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("recipient delete should be forbidden, got %v", err)
	}
	if err := svc.Delete(ctx, 1, 999); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}

	if err := svc.Delete(ctx, 1, sent.Message.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	mine, err := svc.Messages(ctx, 1, sent.Conversation.ID, 1, 50)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(mine) != 0 {
		t.Fatalf("deleted message still visible to the sender: %+v", mine)
	}
	theirs, err := svc.Messages(ctx, 2, sent.Conversation.ID, 1, 50)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(theirs) != 1 {
		t.Fatalf("soft delete must not hide the message from the recipient")
	}
}

func TestArchiveRemovesFromActiveList(t *testing.T) {
	svc, _ := newServiceForTest()
	ctx := context.Background()

	sent, err := svc.Send(ctx, 1, SendInput{RecipientID: 2, Content: "hello"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := svc.Archive(ctx, 3, sent.Conversation.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider archive should be forbidden, got %v", err)
	}
	if err := svc.Archive(ctx, 1, sent.Conversation.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}

	views, err := svc.Conversations(ctx, 1)
	if err != nil {
		t.Fatalf("conversations: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("archived conversation still listed: %+v", views)
	}
}

func TestConversationsViewAssembly(t *testing.T) {
	svc, _ := newServiceForTest()
	ctx := context.Background()

	sent, err := svc.Send(ctx, 1, SendInput{RecipientID: 2, Content: "hello Bruno"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	views, err := svc.Conversations(ctx, 2)
	if err != nil {
		t.Fatalf("conversations: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected one conversation, got %d", len(views))
	}
	view := views[0]
	if view.ID != sent.Conversation.ID || view.Other.ID != 1 || view.Other.Name != "Alice" {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.UnreadCount != 1 {
		t.Fatalf("expected one unread for the recipient, got %d", view.UnreadCount)
	}
	if view.LastMessage == nil || view.LastMessage.Content != "hello Bruno" || view.LastMessage.SenderID != 1 {
		t.Fatalf("last message snapshot missing: %+v", view.LastMessage)
	}
}

func TestLimitsDelegatesPerTier(t *testing.T) {
	svc, _ := newServiceForTest()
	ctx := context.Background()

	free, err := svc.Limits(ctx, 1, "")
	if err != nil {
		t.Fatalf("limits: %v", err)
	}
	if free.Limit != 5 || free.Remaining != 3 || free.Unlimited {
		t.Fatalf("unexpected free limits: %+v", free)
	}

	paid, err := svc.Limits(ctx, 2, "")
	if err != nil {
		t.Fatalf("limits: %v", err)
	}
	if !paid.Unlimited || paid.Remaining != -1 {
		t.Fatalf("unexpected premium limits: %+v", paid)
	}
}
