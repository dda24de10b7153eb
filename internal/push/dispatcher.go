package push

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jabinweb/church-manager-sub003/internal/model"
)

const heartbeatInterval = 30 * time.Second

// ParticipantSource resolves the current active participant set of a
// conversation. The dispatcher queries it fresh for every event;
// membership changes between events must be visible.
type ParticipantSource interface {
	ActiveParticipantIDs(conversationID uuid.UUID) ([]uuid.UUID, error)
}

// OfflineNotifier receives new-message notifications for recipients
// with no live stream (mobile push). Best effort, may be nil.
type OfflineNotifier interface {
	NotifyNewMessage(ctx context.Context, userID uuid.UUID, msg *model.Message)
}

// Dispatcher fans out domain events to the live streams of affected
// participants. It holds no state of its own: the recipient set is
// always (active participants) minus (actor), recomputed per event,
// and a failed delivery is a logged miss, never an error to the
// mutation that triggered it.
type Dispatcher struct {
	registry     *Registry
	participants ParticipantSource
	notifier     OfflineNotifier
}

func NewDispatcher(registry *Registry, participants ParticipantSource, notifier OfflineNotifier) *Dispatcher {
	return &Dispatcher{
		registry:     registry,
		participants: participants,
		notifier:     notifier,
	}
}

// Run drives the heartbeat loop until the context is cancelled. A
// failed heartbeat write retires the connection inside the registry,
// which is the primary detector of half-open streams.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			d.registry.Broadcast(model.NewEnvelope(model.HeartbeatEvent{Timestamp: t}))
		}
	}
}

// recipients resolves the fan-out targets for an event in the given
// conversation, excluding the actor.
func (d *Dispatcher) recipients(conversationID, actorID uuid.UUID) []uuid.UUID {
	ids, err := d.participants.ActiveParticipantIDs(conversationID)
	if err != nil {
		log.Printf("⚠️ Could not resolve participants of %s: %v", conversationID, err)
		return nil
	}
	out := ids[:0]
	for _, id := range ids {
		if id != actorID {
			out = append(out, id)
		}
	}
	return out
}

// fanOut pushes the envelope to every recipient and logs the miss
// count. Returns the users that had no live stream.
func (d *Dispatcher) fanOut(conversationID, actorID uuid.UUID, env *model.Envelope) []uuid.UUID {
	targets := d.recipients(conversationID, actorID)
	if len(targets) == 0 {
		return nil
	}

	var offline []uuid.UUID
	delivered := 0
	for _, id := range targets {
		if d.registry.Send(id, env) {
			delivered++
		} else {
			offline = append(offline, id)
		}
	}
	if delivered < len(targets) {
		log.Printf("📭 %s: delivered %d/%d (rest offline)", env.Type, delivered, len(targets))
	}
	return offline
}

// MessageSent fans out a new message and hands offline recipients to
// the mobile notifier.
func (d *Dispatcher) MessageSent(ctx context.Context, actorID uuid.UUID, msg *model.Message) {
	offline := d.fanOut(msg.ConversationID, actorID, model.NewEnvelope(model.NewMessageEvent{
		Message:        msg,
		ConversationID: msg.ConversationID,
	}))

	if d.notifier != nil {
		for _, id := range offline {
			d.notifier.NotifyNewMessage(ctx, id, msg)
		}
	}
}

func (d *Dispatcher) MessageEdited(actorID uuid.UUID, msg *model.Message) {
	d.fanOut(msg.ConversationID, actorID, model.NewEnvelope(model.MessageEditedEvent{Message: msg}))
}

func (d *Dispatcher) ReactionToggled(conversationID, actorID uuid.UUID, ev model.MessageReactionEvent) {
	d.fanOut(conversationID, actorID, model.NewEnvelope(ev))
}

func (d *Dispatcher) MessagesRead(ev model.MessagesReadEvent) {
	d.fanOut(ev.ConversationID, ev.ReadBy, model.NewEnvelope(ev))
}

func (d *Dispatcher) Typing(ev model.UserTypingEvent) {
	d.fanOut(ev.ConversationID, ev.UserID, model.NewEnvelope(ev))
}
