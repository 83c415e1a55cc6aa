package services

import (
	"github.com/Yasvanth-2005/chat-backend/internal/presence"
	"github.com/Yasvanth-2005/chat-backend/pkg/logger"
)

// Emitter is the slice of the socket server the dispatcher needs.
// *socketio.Server satisfies it.
type Emitter interface {
	BroadcastToRoom(namespace string, room string, event string, args ...interface{}) bool
}

// Dispatcher delivers events to the currently connected participants of a
// chat. Delivery is fire-and-forget, at-most-once: offline participants are
// skipped silently, there is no queue and no retry, and a failed emit to one
// recipient never affects the others.
type Dispatcher struct {
	emitter  Emitter
	registry *presence.Registry
}

func NewDispatcher(emitter Emitter, registry *presence.Registry) *Dispatcher {
	return &Dispatcher{emitter: emitter, registry: registry}
}

// FanOut emits event to the personal room of every participant who currently
// holds a live connection.
func (d *Dispatcher) FanOut(participantIDs []string, event string, payload interface{}) {
	for _, pid := range participantIDs {
		if !d.registry.Online(pid) {
			continue
		}
		d.emitter.BroadcastToRoom("/", pid, event, payload)
	}
}

// ToUser emits event to a single user, if connected.
func (d *Dispatcher) ToUser(userID, event string, payload interface{}) {
	if !d.registry.Online(userID) {
		logger.Debug().Str("user_id", userID).Str("event", event).Msg("recipient offline, dropping event")
		return
	}
	d.emitter.BroadcastToRoom("/", userID, event, payload)
}

// ToRoom emits event to a chat-level room (everyone whose socket joined the
// chat's room). Equivalent to FanOut for participants who joined the room.
func (d *Dispatcher) ToRoom(room, event string, payload interface{}) {
	d.emitter.BroadcastToRoom("/", room, event, payload)
}

// Broadcast emits to the global presence room (online/offline updates).
func (d *Dispatcher) Broadcast(event string, payload interface{}) {
	d.emitter.BroadcastToRoom("/", "presence", event, payload)
}

// Registry exposes the underlying presence registry.
func (d *Dispatcher) Registry() *presence.Registry {
	return d.registry
}
