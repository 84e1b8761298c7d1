package delivery

import (
	"sync"

	"github.com/google/uuid"
)

// Registry maps recipients to their active real-time connection handle.
// A recipient has at most one handle; registering again replaces the old
// one. It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	byRecipient map[uuid.UUID]string
	byHandle    map[string]uuid.UUID
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byRecipient: make(map[uuid.UUID]string),
		byHandle:    make(map[string]uuid.UUID),
	}
}

// Register binds handle to recipientID and returns the handle it replaced,
// if any.
func (r *Registry) Register(recipientID uuid.UUID, handle string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byHandle[handle]; ok && prev != recipientID {
		delete(r.byRecipient, prev)
	}
	old, replaced := r.byRecipient[recipientID]
	if replaced && old != handle {
		delete(r.byHandle, old)
	}
	r.byRecipient[recipientID] = handle
	r.byHandle[handle] = recipientID
	return old, replaced && old != handle
}

// Unregister drops handle. The recipient's binding is removed only if it
// still points at this handle. It returns the recipient the handle was
// registered for.
func (r *Registry) Unregister(handle string) (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	recipientID, ok := r.byHandle[handle]
	if !ok {
		return uuid.Nil, false
	}
	delete(r.byHandle, handle)
	if r.byRecipient[recipientID] == handle {
		delete(r.byRecipient, recipientID)
	}
	return recipientID, true
}

// Lookup returns the active handle of recipientID.
func (r *Registry) Lookup(recipientID uuid.UUID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handle, ok := r.byRecipient[recipientID]
	return handle, ok
}

// Len returns the number of recipients with an active handle.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byRecipient)
}
