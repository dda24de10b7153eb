package push

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jabinweb/church-manager-sub003/internal/model"
	"github.com/stretchr/testify/assert"
)

// fakeParticipants serves fixed membership per conversation.
type fakeParticipants struct {
	members map[uuid.UUID][]uuid.UUID
	err     error
}

func (f *fakeParticipants) ActiveParticipantIDs(conversationID uuid.UUID) ([]uuid.UUID, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.members[conversationID], nil
}

// fakeNotifier records which users got a mobile notification.
type fakeNotifier struct {
	mu       sync.Mutex
	notified []uuid.UUID
}

func (f *fakeNotifier) NotifyNewMessage(_ context.Context, userID uuid.UUID, _ *model.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notified = append(f.notified, userID)
}

func TestDispatcherExcludesActor(t *testing.T) {
	convID := uuid.New()
	sender := uuid.New()
	recipient := uuid.New()

	reg := NewRegistry()
	senderStream := &fakeHandle{}
	recipientStream := &fakeHandle{}
	reg.Register(sender, senderStream)
	reg.Register(recipient, recipientStream)

	d := NewDispatcher(reg, &fakeParticipants{
		members: map[uuid.UUID][]uuid.UUID{convID: {sender, recipient}},
	}, nil)

	msg := &model.Message{ID: uuid.New(), ConversationID: convID, SenderID: &sender}
	d.MessageSent(context.Background(), sender, msg)

	assert.Equal(t, 0, senderStream.frameCount(), "actor must not receive their own event")
	assert.Equal(t, 1, recipientStream.frameCount())
	assert.Contains(t, string(recipientStream.frames[0]), `"type":"new_message"`)
}

func TestDispatcherNotifiesOfflineRecipients(t *testing.T) {
	convID := uuid.New()
	sender := uuid.New()
	online := uuid.New()
	offline := uuid.New()

	reg := NewRegistry()
	reg.Register(online, &fakeHandle{})

	notifier := &fakeNotifier{}
	d := NewDispatcher(reg, &fakeParticipants{
		members: map[uuid.UUID][]uuid.UUID{convID: {sender, online, offline}},
	}, notifier)

	d.MessageSent(context.Background(), sender, &model.Message{ID: uuid.New(), ConversationID: convID})

	assert.Equal(t, []uuid.UUID{offline}, notifier.notified)
}

func TestDispatcherParticipantLookupFailureIsSilent(t *testing.T) {
	reg := NewRegistry()
	userID := uuid.New()
	stream := &fakeHandle{}
	reg.Register(userID, stream)

	d := NewDispatcher(reg, &fakeParticipants{err: errors.New("db down")}, nil)
	d.MessageEdited(uuid.New(), &model.Message{ID: uuid.New(), ConversationID: uuid.New()})

	assert.Equal(t, 0, stream.frameCount())
}

func TestDispatcherMembershipIsQueriedFresh(t *testing.T) {
	convID := uuid.New()
	actor := uuid.New()
	member := uuid.New()

	reg := NewRegistry()
	stream := &fakeHandle{}
	reg.Register(member, stream)

	src := &fakeParticipants{members: map[uuid.UUID][]uuid.UUID{convID: {actor, member}}}
	d := NewDispatcher(reg, src, nil)

	d.Typing(model.UserTypingEvent{UserID: actor, ConversationID: convID, IsTyping: true})
	assert.Equal(t, 1, stream.frameCount())

	// Member leaves between events; the next fan-out must not reach them.
	src.members[convID] = []uuid.UUID{actor}
	d.Typing(model.UserTypingEvent{UserID: actor, ConversationID: convID, IsTyping: false})
	assert.Equal(t, 1, stream.frameCount())
}

func TestDispatcherMessagesReadExcludesReader(t *testing.T) {
	convID := uuid.New()
	reader := uuid.New()
	other := uuid.New()

	reg := NewRegistry()
	readerStream := &fakeHandle{}
	otherStream := &fakeHandle{}
	reg.Register(reader, readerStream)
	reg.Register(other, otherStream)

	d := NewDispatcher(reg, &fakeParticipants{
		members: map[uuid.UUID][]uuid.UUID{convID: {reader, other}},
	}, nil)

	d.MessagesRead(model.MessagesReadEvent{
		ConversationID: convID,
		ReadBy:         reader,
		MessageIDs:     []uuid.UUID{uuid.New()},
	})

	assert.Equal(t, 0, readerStream.frameCount())
	assert.Equal(t, 1, otherStream.frameCount())
	assert.Contains(t, string(otherStream.frames[0]), `"type":"messages_read"`)
}
