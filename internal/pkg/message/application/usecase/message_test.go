package usecase

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	message "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/message/application/domain"
	repository "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/message/persistence/repository/port"
)

type receiptKey struct {
	userID    int64
	messageID int64
}

// fakeRepo is an in-memory MessageRepository with the same upsert semantics
// as the Postgres adapter: existing timestamps are never moved.
type fakeRepo struct {
	mu sync.Mutex

	nextID       int64
	members      map[int64][]int64 // channelID -> active user ids
	messages     map[int64]message.Message
	receipts     map[receiptKey]message.Receipt
	senders      map[int64]message.Sender
	lastActivity map[int64]time.Time
}

var _ repository.MessageRepository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		members:      make(map[int64][]int64),
		messages:     make(map[int64]message.Message),
		receipts:     make(map[receiptKey]message.Receipt),
		senders:      make(map[int64]message.Sender),
		lastActivity: make(map[int64]time.Time),
	}
}

func (f *fakeRepo) ActiveMembership(_ context.Context, channelID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.members[channelID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) SaveMessage(_ context.Context, m message.Message) (message.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m.ID = f.nextID
	f.messages[m.ID] = m
	f.lastActivity[m.ChannelID] = m.CreatedAt
	return m, nil
}

func (f *fakeRepo) ActiveParticipantIDs(_ context.Context, channelID int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := append([]int64(nil), f.members[channelID]...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (f *fakeRepo) CreateReceipts(_ context.Context, messageID int64, userIDs []int64, deliveredAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range userIDs {
		key := receiptKey{userID: id, messageID: messageID}
		if _, ok := f.receipts[key]; ok {
			continue
		}
		at := deliveredAt
		f.receipts[key] = message.Receipt{UserID: id, MessageID: messageID, DeliveredAt: &at}
	}
	return nil
}

func (f *fakeRepo) FindMessageForMember(_ context.Context, messageID, userID int64) (*message.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[messageID]
	if !ok {
		return nil, nil
	}
	for _, id := range f.members[m.ChannelID] {
		if id == userID {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) MarkRead(_ context.Context, messageID, userID int64, at time.Time) (*message.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := receiptKey{userID: userID, messageID: messageID}
	rec := f.receipts[key]
	rec.UserID = userID
	rec.MessageID = messageID
	if rec.DeliveredAt == nil {
		d := at
		rec.DeliveredAt = &d
	}
	if rec.ReadAt == nil {
		r := at
		rec.ReadAt = &r
	}
	f.receipts[key] = rec
	return &rec, nil
}

func (f *fakeRepo) MarkDelivered(_ context.Context, messageID, userID int64, at time.Time) (*message.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := receiptKey{userID: userID, messageID: messageID}
	rec := f.receipts[key]
	rec.UserID = userID
	rec.MessageID = messageID
	if rec.DeliveredAt == nil {
		d := at
		rec.DeliveredAt = &d
	}
	f.receipts[key] = rec
	return &rec, nil
}

func (f *fakeRepo) FindSender(_ context.Context, userID int64) (*message.Sender, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.senders[userID]; ok {
		return &s, nil
	}
	return nil, nil
}

type recordedEvent struct {
	UserID int64
	Type   string
	Data   any
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeEmitter) ToUser(userID int64, eventType string, data any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{UserID: userID, Type: eventType, Data: data})
}

func (f *fakeEmitter) ToUsers(userIDs []int64, eventType string, data any) {
	for _, id := range userIDs {
		f.ToUser(id, eventType, data)
	}
}

func (f *fakeEmitter) ofType(eventType string) []recordedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedEvent
	for _, e := range f.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func messagingSetup() (*fakeRepo, *fakeEmitter) {
	repo := newFakeRepo()
	repo.members[10] = []int64{1, 2, 3}
	repo.senders[1] = message.Sender{ID: 1, FullName: "Alice Smith", NickName: "alice"}
	repo.senders[2] = message.Sender{ID: 2, FullName: "Bob Jones", NickName: "bob"}
	return repo, &fakeEmitter{}
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("persists, cuts one receipt per participant and fans out", func(t *testing.T) {
		repo, em := messagingSetup()
		uc := NewSendMessageUseCase(repo, em)

		payload, err := uc.Execute(ctx, SendMessageInput{SenderID: 1, ChannelID: 10, Content: "  hello  "})
		require.NoError(t, err)
		require.Equal(t, "hello", payload.Content)
		require.Equal(t, "alice", payload.Sender.NickName)
		require.True(t, payload.Status.Sent)
		require.True(t, payload.Status.Delivered)
		require.False(t, payload.Status.Read)

		// Three participants, the sender included, each get a receipt row
		// with delivery stamped and read unset.
		require.Len(t, repo.receipts, 3)
		for _, rec := range repo.receipts {
			require.NotNil(t, rec.DeliveredAt)
			require.Nil(t, rec.ReadAt)
		}

		events := em.ofType(message.EventNewMessage)
		require.Len(t, events, 3)

		require.False(t, repo.lastActivity[10].IsZero())
	})

	t.Run("empty content", func(t *testing.T) {
		repo, em := messagingSetup()
		uc := NewSendMessageUseCase(repo, em)

		_, err := uc.Execute(ctx, SendMessageInput{SenderID: 1, ChannelID: 10, Content: "   "})
		require.ErrorIs(t, err, message.ErrEmptyContent)
	})

	t.Run("non-member cannot send", func(t *testing.T) {
		repo, em := messagingSetup()
		uc := NewSendMessageUseCase(repo, em)

		_, err := uc.Execute(ctx, SendMessageInput{SenderID: 99, ChannelID: 10, Content: "hi"})
		require.ErrorIs(t, err, message.ErrNotMember)
	})
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()

	send := func(t *testing.T, repo *fakeRepo, em *fakeEmitter) *message.Payload {
		t.Helper()
		payload, err := NewSendMessageUseCase(repo, em).Execute(ctx, SendMessageInput{SenderID: 1, ChannelID: 10, Content: "hello"})
		require.NoError(t, err)
		return payload
	}

	t.Run("read notifies the sender and the reader's own devices", func(t *testing.T) {
		repo, em := messagingSetup()
		msg := send(t, repo, em)
		uc := NewMarkReadUseCase(repo, em)

		result, err := uc.Execute(ctx, MarkReadInput{UserID: 2, MessageID: msg.ID})
		require.NoError(t, err)
		require.NotNil(t, result.ReadAt)

		events := em.ofType(message.EventMessageRead)
		require.Len(t, events, 2)
		require.Equal(t, int64(1), events[0].UserID)
		require.Equal(t, int64(2), events[1].UserID)

		data := events[0].Data.(message.ReadData)
		require.Equal(t, int64(2), data.ReadBy)
	})

	t.Run("repeated reads keep the first timestamp", func(t *testing.T) {
		repo, em := messagingSetup()
		msg := send(t, repo, em)
		uc := NewMarkReadUseCase(repo, em)

		first, err := uc.Execute(ctx, MarkReadInput{UserID: 2, MessageID: msg.ID})
		require.NoError(t, err)
		second, err := uc.Execute(ctx, MarkReadInput{UserID: 2, MessageID: msg.ID})
		require.NoError(t, err)
		require.Equal(t, *first.ReadAt, *second.ReadAt)
	})

	t.Run("sender reading own message skips the sender event", func(t *testing.T) {
		repo, em := messagingSetup()
		msg := send(t, repo, em)
		uc := NewMarkReadUseCase(repo, em)

		_, err := uc.Execute(ctx, MarkReadInput{UserID: 1, MessageID: msg.ID})
		require.NoError(t, err)
		events := em.ofType(message.EventMessageRead)
		require.Len(t, events, 1)
		require.Equal(t, int64(1), events[0].UserID)
	})

	t.Run("non-member sees no message", func(t *testing.T) {
		repo, em := messagingSetup()
		msg := send(t, repo, em)
		uc := NewMarkReadUseCase(repo, em)

		_, err := uc.Execute(ctx, MarkReadInput{UserID: 99, MessageID: msg.ID})
		require.ErrorIs(t, err, message.ErrMessageNotFound)
	})
}

func TestMarkDelivered(t *testing.T) {
	ctx := context.Background()
	repo, em := messagingSetup()
	msg, err := NewSendMessageUseCase(repo, em).Execute(ctx, SendMessageInput{SenderID: 1, ChannelID: 10, Content: "hello"})
	require.NoError(t, err)
	uc := NewMarkDeliveredUseCase(repo, em)

	t.Run("delivery confirmation reaches only the sender", func(t *testing.T) {
		result, err := uc.Execute(ctx, MarkDeliveredInput{UserID: 2, MessageID: msg.ID})
		require.NoError(t, err)
		require.NotNil(t, result.DeliveredAt)

		events := em.ofType(message.EventMessageDelivered)
		require.Len(t, events, 1)
		require.Equal(t, int64(1), events[0].UserID)
	})

	t.Run("idempotent and silent for the sender itself", func(t *testing.T) {
		first, err := uc.Execute(ctx, MarkDeliveredInput{UserID: 2, MessageID: msg.ID})
		require.NoError(t, err)
		second, err := uc.Execute(ctx, MarkDeliveredInput{UserID: 2, MessageID: msg.ID})
		require.NoError(t, err)
		require.Equal(t, *first.DeliveredAt, *second.DeliveredAt)

		before := len(em.ofType(message.EventMessageDelivered))
		_, err = uc.Execute(ctx, MarkDeliveredInput{UserID: 1, MessageID: msg.ID})
		require.NoError(t, err)
		require.Len(t, em.ofType(message.EventMessageDelivered), before)
	})
}
