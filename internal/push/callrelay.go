package push

import (
	"time"

	"github.com/google/uuid"
	"github.com/jabinweb/church-manager-sub003/internal/apperr"
	"github.com/jabinweb/church-manager-sub003/internal/model"
)

// CallSignalRelay routes two-party call setup signals to exactly one
// target through the registry. It keeps no call state and never
// queues: an offline target is reported back so the caller's UI can
// say "not available".
type CallSignalRelay struct {
	registry *Registry
}

func NewCallSignalRelay(registry *Registry) *CallSignalRelay {
	return &CallSignalRelay{registry: registry}
}

// Relay validates the signal, resolves the single target by the fixed
// routing table, and attempts delivery. The returned bool is whether
// the target had a live stream.
//
// Routing: incoming goes to the receiver; accepted and rejected go
// back to the caller; ended and failed go to whichever of the pair is
// not the actor.
func (r *CallSignalRelay) Relay(actorID uuid.UUID, req model.CallSignalRequest) (bool, error) {
	if _, ok := req.Signal.EventType(); !ok {
		return false, apperr.Validation("unknown call signal %q", req.Signal)
	}
	if req.Caller == req.Receiver {
		return false, apperr.Validation("caller and receiver must differ")
	}
	if actorID != req.Caller && actorID != req.Receiver {
		return false, apperr.Permission("not a party of this call")
	}

	var target uuid.UUID
	switch req.Signal {
	case model.CallSignalIncoming:
		target = req.Receiver
	case model.CallSignalAccepted, model.CallSignalRejected:
		target = req.Caller
	case model.CallSignalEnded, model.CallSignalFailed:
		target = req.Caller
		if actorID == req.Caller {
			target = req.Receiver
		}
	}

	env := model.NewEnvelope(model.CallSignalEvent{
		Signal:    req.Signal,
		CallID:    req.CallID,
		CallType:  req.CallType,
		Caller:    req.Caller,
		Receiver:  req.Receiver,
		Timestamp: time.Now(),
		Payload:   req.Payload,
	})
	return r.registry.Send(target, env), nil
}
