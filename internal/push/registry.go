// Package push holds the in-memory fan-out layer: the connection
// registry, stream handles, the dispatcher, and the call signal relay.
// Nothing in this package is persisted; the registry starts empty on
// every process start and clients re-register by reconnecting.
package push

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/jabinweb/church-manager-sub003/internal/model"
)

// Handle is one live outbound push stream. Implementations must be
// safe for concurrent writes.
type Handle interface {
	// WriteEnvelope writes one serialized envelope frame. An error means
	// the connection is dead; the registry retires it.
	WriteEnvelope(data []byte) error
	Close() error
}

// Registry maps a user to their single live push stream. It is the one
// piece of shared mutable state in the process and every mutation is
// serialized behind the mutex.
//
// A user keeps at most one handle: registering a second stream (another
// tab, a reconnect) retires the previous one. Last registration wins;
// the dropped tab goes silent. Known limitation, kept for simplicity
// over per-user handle sets.
type Registry struct {
	mu      sync.RWMutex
	streams map[uuid.UUID]Handle
}

// NewRegistry creates an empty connection registry. There is exactly
// one per process, constructed in the composition root and injected
// into whatever pushes events.
func NewRegistry() *Registry {
	return &Registry{streams: make(map[uuid.UUID]Handle)}
}

// Register stores the user's live handle, retiring any previous one
// with a best-effort close. It always succeeds.
func (r *Registry) Register(userID uuid.UUID, h Handle) {
	r.mu.Lock()
	prev := r.streams[userID]
	r.streams[userID] = h
	r.mu.Unlock()

	if prev != nil {
		_ = prev.Close()
		log.Printf("🔁 Replaced live stream for user %s", userID)
	}
}

// Unregister removes the mapping if the given handle is still the
// current one. The handle guard keeps a slow teardown of a replaced
// stream from evicting its successor. No-op when absent.
func (r *Registry) Unregister(userID uuid.UUID, h Handle) {
	r.mu.Lock()
	if cur, ok := r.streams[userID]; ok && (h == nil || cur == h) {
		delete(r.streams, userID)
	}
	r.mu.Unlock()
}

// Send delivers one envelope to the user's live stream. It returns
// false when the user has no stream (offline is not an error) or when
// the write fails, in which case the dead entry is removed and closed
// so the map self-heals.
func (r *Registry) Send(userID uuid.UUID, env *model.Envelope) bool {
	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("⚠️ Failed to marshal %s envelope: %v", env.Type, err)
		return false
	}
	return r.sendRaw(userID, data)
}

func (r *Registry) sendRaw(userID uuid.UUID, data []byte) bool {
	r.mu.RLock()
	h, ok := r.streams[userID]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	if err := h.WriteEnvelope(data); err != nil {
		log.Printf("❌ Dead stream for user %s, retiring: %v", userID, err)
		r.Unregister(userID, h)
		_ = h.Close()
		return false
	}
	return true
}

// SendMany delivers the envelope to each user and returns the number
// of successful deliveries.
func (r *Registry) SendMany(userIDs []uuid.UUID, env *model.Envelope) int {
	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("⚠️ Failed to marshal %s envelope: %v", env.Type, err)
		return 0
	}

	delivered := 0
	for _, id := range userIDs {
		if r.sendRaw(id, data) {
			delivered++
		}
	}
	return delivered
}

// Broadcast sends the envelope to every registered user. Used for
// heartbeats; failed writes retire their entries as usual.
func (r *Registry) Broadcast(env *model.Envelope) int {
	return r.SendMany(r.OnlineUsers(), env)
}

// IsOnline reports whether the user currently has a live stream.
func (r *Registry) IsOnline(userID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.streams[userID]
	return ok
}

// OnlineUsers returns a snapshot of all connected user IDs.
func (r *Registry) OnlineUsers() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(r.streams))
	for id := range r.streams {
		ids = append(ids, id)
	}
	return ids
}
