package model

import (
	"time"

	"github.com/google/uuid"
)

// EventType is the wire discriminator of a push envelope
type EventType string

const (
	EventConnectionEstablished EventType = "connection_established"
	EventHeartbeat             EventType = "heartbeat"
	EventNewMessage            EventType = "new_message"
	EventMessageEdited         EventType = "message_edited"
	EventMessageReaction       EventType = "message_reaction"
	EventMessagesRead          EventType = "messages_read"
	EventUserTyping            EventType = "user_typing"
	EventCallIncoming          EventType = "call_incoming"
	EventCallAccepted          EventType = "call_accepted"
	EventCallRejected          EventType = "call_rejected"
	EventCallEnded             EventType = "call_ended"
	EventCallFailed            EventType = "call_failed"
)

// EventPayload is the closed set of push event payloads. The marker
// method ties each payload struct to exactly one EventType, so an
// envelope's discriminator can never disagree with its data.
type EventPayload interface {
	eventType() EventType
}

// Envelope is one frame on the push stream: a type discriminator plus
// the typed payload. Build it with NewEnvelope, never by hand.
type Envelope struct {
	Type EventType    `json:"type"`
	Data EventPayload `json:"data"`
}

// NewEnvelope wraps a payload in an envelope carrying its event type.
func NewEnvelope(p EventPayload) *Envelope {
	return &Envelope{Type: p.eventType(), Data: p}
}

type ConnectionEstablishedEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (ConnectionEstablishedEvent) eventType() EventType { return EventConnectionEstablished }

type HeartbeatEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (HeartbeatEvent) eventType() EventType { return EventHeartbeat }

type NewMessageEvent struct {
	Message        *Message  `json:"message"`
	ConversationID uuid.UUID `json:"conversation_id"`
}

func (NewMessageEvent) eventType() EventType { return EventNewMessage }

type MessageEditedEvent struct {
	Message *Message `json:"message"`
}

func (MessageEditedEvent) eventType() EventType { return EventMessageEdited }

// MessageReactionEvent carries the full current reaction set so
// clients replace state instead of applying a delta.
type MessageReactionEvent struct {
	MessageID uuid.UUID         `json:"message_id"`
	Reactions []MessageReaction `json:"reactions"`
	Action    ReactionAction    `json:"action"`
	Emoji     string            `json:"emoji"`
	UserID    uuid.UUID         `json:"user_id"`
}

func (MessageReactionEvent) eventType() EventType { return EventMessageReaction }

type MessagesReadEvent struct {
	ConversationID uuid.UUID   `json:"conversation_id"`
	ReadBy         uuid.UUID   `json:"read_by"`
	MessageIDs     []uuid.UUID `json:"message_ids"`
	ReadAt         time.Time   `json:"read_at"`
}

func (MessagesReadEvent) eventType() EventType { return EventMessagesRead }

type UserTypingEvent struct {
	UserID         uuid.UUID `json:"user_id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	IsTyping       bool      `json:"is_typing"`
	Timestamp      time.Time `json:"timestamp"`
}

func (UserTypingEvent) eventType() EventType { return EventUserTyping }

// CallSignalType is the client-facing name of a call signal
type CallSignalType string

const (
	CallSignalIncoming CallSignalType = "incoming"
	CallSignalAccepted CallSignalType = "accepted"
	CallSignalRejected CallSignalType = "rejected"
	CallSignalEnded    CallSignalType = "ended"
	CallSignalFailed   CallSignalType = "failed"
)

// EventType maps a signal to its push event discriminator.
func (t CallSignalType) EventType() (EventType, bool) {
	switch t {
	case CallSignalIncoming:
		return EventCallIncoming, true
	case CallSignalAccepted:
		return EventCallAccepted, true
	case CallSignalRejected:
		return EventCallRejected, true
	case CallSignalEnded:
		return EventCallEnded, true
	case CallSignalFailed:
		return EventCallFailed, true
	}
	return "", false
}

// CallSignalEvent is a two-party call setup signal. SDP/ICE blobs from
// the clients travel opaquely in Payload.
type CallSignalEvent struct {
	Signal    CallSignalType `json:"signal"`
	CallID    uuid.UUID      `json:"call_id"`
	CallType  string         `json:"call_type"` // "audio" or "video"
	Caller    uuid.UUID      `json:"caller"`
	Receiver  uuid.UUID      `json:"receiver"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   any            `json:"payload,omitempty"`
}

func (e CallSignalEvent) eventType() EventType {
	t, _ := e.Signal.EventType()
	return t
}
