package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelopeCarriesPayloadType(t *testing.T) {
	tests := []struct {
		payload EventPayload
		want    EventType
	}{
		{HeartbeatEvent{Timestamp: time.Now()}, EventHeartbeat},
		{ConnectionEstablishedEvent{UserID: uuid.New()}, EventConnectionEstablished},
		{NewMessageEvent{ConversationID: uuid.New()}, EventNewMessage},
		{MessageEditedEvent{}, EventMessageEdited},
		{MessagesReadEvent{}, EventMessagesRead},
		{UserTypingEvent{IsTyping: true}, EventUserTyping},
		{CallSignalEvent{Signal: CallSignalIncoming}, EventCallIncoming},
		{CallSignalEvent{Signal: CallSignalEnded}, EventCallEnded},
	}

	for _, tt := range tests {
		env := NewEnvelope(tt.payload)
		assert.Equal(t, tt.want, env.Type)
	}
}

func TestEnvelopeWireShape(t *testing.T) {
	userID := uuid.New()
	env := NewEnvelope(UserTypingEvent{
		UserID:   userID,
		IsTyping: true,
	})

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.JSONEq(t, `"user_typing"`, string(decoded["type"]))
	assert.Contains(t, string(decoded["data"]), userID.String())
}

func TestCallSignalTypeMapping(t *testing.T) {
	for signal, want := range map[CallSignalType]EventType{
		CallSignalIncoming: EventCallIncoming,
		CallSignalAccepted: EventCallAccepted,
		CallSignalRejected: EventCallRejected,
		CallSignalEnded:    EventCallEnded,
		CallSignalFailed:   EventCallFailed,
	} {
		got, ok := signal.EventType()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := CallSignalType("ringing").EventType()
	assert.False(t, ok)
}

func TestDirectKeyForIsOrderIndependent(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	assert.Equal(t, DirectKeyFor(a, b), DirectKeyFor(b, a))
	assert.NotEqual(t, DirectKeyFor(a, b), DirectKeyFor(a, uuid.New()))
}
