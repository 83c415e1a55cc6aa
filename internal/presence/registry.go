// Package presence tracks which users currently hold a live socket
// connection. State is process-local and ephemeral: it starts empty on every
// boot and is the sole authority for liveness (persisted socket ids from a
// previous lifetime are stale by definition).
package presence

import "sync"

// Registry maps a user id to its current connection handle. At most one
// handle per user; a second Join overwrites the first (last join wins).
type Registry struct {
	mu      sync.RWMutex
	handles map[string]string // userId -> socketId
}

func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]string)}
}

// Join records userID as online under the given connection handle,
// replacing any previous handle.
func (r *Registry) Join(userID, handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[userID] = handle
}

// Leave removes the mapping owned by handle and returns the user it
// belonged to. ok is false when no user owned the handle (e.g. the user
// reconnected and the old handle was already superseded).
func (r *Registry) Leave(handle string) (userID string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for uid, h := range r.handles {
		if h == handle {
			delete(r.handles, uid)
			return uid, true
		}
	}
	return "", false
}

// HandleOf returns the current connection handle for userID.
func (r *Registry) HandleOf(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[userID]
	return h, ok
}

// Online reports whether userID currently has a live connection.
func (r *Registry) Online(userID string) bool {
	_, ok := r.HandleOf(userID)
	return ok
}

// Snapshot returns the ids of all currently connected users.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]string, 0, len(r.handles))
	for uid := range r.handles {
		users = append(users, uid)
	}
	return users
}
