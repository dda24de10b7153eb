package push

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jabinweb/church-manager-sub003/internal/apperr"
	"github.com/jabinweb/church-manager-sub003/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallRelayRouting(t *testing.T) {
	caller := uuid.New()
	receiver := uuid.New()

	tests := []struct {
		name   string
		signal model.CallSignalType
		actor  uuid.UUID
		target uuid.UUID
		event  string
	}{
		{"incoming goes to receiver", model.CallSignalIncoming, caller, receiver, "call_incoming"},
		{"accepted goes back to caller", model.CallSignalAccepted, receiver, caller, "call_accepted"},
		{"rejected goes back to caller", model.CallSignalRejected, receiver, caller, "call_rejected"},
		{"ended by caller goes to receiver", model.CallSignalEnded, caller, receiver, "call_ended"},
		{"ended by receiver goes to caller", model.CallSignalEnded, receiver, caller, "call_ended"},
		{"failed by caller goes to receiver", model.CallSignalFailed, caller, receiver, "call_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			callerStream := &fakeHandle{}
			receiverStream := &fakeHandle{}
			reg.Register(caller, callerStream)
			reg.Register(receiver, receiverStream)

			relay := NewCallSignalRelay(reg)
			delivered, err := relay.Relay(tt.actor, model.CallSignalRequest{
				Signal:   tt.signal,
				CallID:   uuid.New(),
				CallType: "video",
				Caller:   caller,
				Receiver: receiver,
			})
			require.NoError(t, err)
			assert.True(t, delivered)

			streamOf := map[uuid.UUID]*fakeHandle{caller: callerStream, receiver: receiverStream}
			assert.Equal(t, 1, streamOf[tt.target].frameCount())
			assert.Contains(t, string(streamOf[tt.target].frames[0]), tt.event)

			for id, s := range streamOf {
				if id != tt.target {
					assert.Equal(t, 0, s.frameCount(), "non-target must stay silent")
				}
			}
		})
	}
}

func TestCallRelayOfflineTarget(t *testing.T) {
	caller := uuid.New()
	receiver := uuid.New()

	relay := NewCallSignalRelay(NewRegistry())
	delivered, err := relay.Relay(caller, model.CallSignalRequest{
		Signal:   model.CallSignalIncoming,
		CallID:   uuid.New(),
		Caller:   caller,
		Receiver: receiver,
	})
	require.NoError(t, err)
	assert.False(t, delivered, "offline target is not an error")
}

func TestCallRelayValidation(t *testing.T) {
	caller := uuid.New()
	receiver := uuid.New()
	relay := NewCallSignalRelay(NewRegistry())

	t.Run("unknown signal", func(t *testing.T) {
		_, err := relay.Relay(caller, model.CallSignalRequest{
			Signal:   "ringing",
			CallID:   uuid.New(),
			Caller:   caller,
			Receiver: receiver,
		})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("self call", func(t *testing.T) {
		_, err := relay.Relay(caller, model.CallSignalRequest{
			Signal:   model.CallSignalIncoming,
			CallID:   uuid.New(),
			Caller:   caller,
			Receiver: caller,
		})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	})

	t.Run("third party", func(t *testing.T) {
		_, err := relay.Relay(uuid.New(), model.CallSignalRequest{
			Signal:   model.CallSignalIncoming,
			CallID:   uuid.New(),
			Caller:   caller,
			Receiver: receiver,
		})
		assert.True(t, apperr.IsKind(err, apperr.KindPermission))
	})
}
